package app

import (
	"fmt"

	registryUseCase "github.com/keygrid/keygrid/internal/registry/usecase"
)

// RegistryUseCase returns the device and organisation registry use case.
func (c *Container) RegistryUseCase() (registryUseCase.RegistryUseCase, error) {
	c.registryInit.Do(func() {
		useCase, err := c.initRegistryUseCase()
		if err != nil {
			c.initErrors["registryUseCase"] = err
			return
		}
		c.registryUseCase = useCase
	})
	if storedErr, exists := c.initErrors["registryUseCase"]; exists {
		return nil, storedErr
	}
	return c.registryUseCase, nil
}

func (c *Container) initRegistryUseCase() (registryUseCase.RegistryUseCase, error) {
	signer, err := c.Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer for registry use case: %w", err)
	}

	return registryUseCase.NewRegistryUseCase(c.Gateway(), signer), nil
}
