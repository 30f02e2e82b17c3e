package app

import (
	"fmt"

	commandUseCase "github.com/keygrid/keygrid/internal/command/usecase"
)

// AuthorizerUseCase returns the command authorizer wrapped with business
// metrics.
func (c *Container) AuthorizerUseCase() (commandUseCase.AuthorizerUseCase, error) {
	c.authorizerInit.Do(func() {
		useCase, err := c.initAuthorizerUseCase()
		if err != nil {
			c.initErrors["authorizerUseCase"] = err
			return
		}
		c.authorizerUseCase = useCase
	})
	if storedErr, exists := c.initErrors["authorizerUseCase"]; exists {
		return nil, storedErr
	}
	return c.authorizerUseCase, nil
}

func (c *Container) initAuthorizerUseCase() (commandUseCase.AuthorizerUseCase, error) {
	authorityAddress, err := c.authorityAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authority address for authorizer: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for authorizer: %w", err)
	}

	useCase := commandUseCase.NewAuthorizerUseCase(c.Gateway(), c.Verifier(), authorityAddress)

	return commandUseCase.NewAuthorizerUseCaseWithMetrics(useCase, businessMetrics), nil
}
