package app

import (
	"fmt"

	keyUseCase "github.com/keygrid/keygrid/internal/key/usecase"
)

// IssuerUseCase returns the key issuer use case wrapped with business
// metrics.
func (c *Container) IssuerUseCase() (keyUseCase.IssuerUseCase, error) {
	c.issuerInit.Do(func() {
		useCase, err := c.initIssuerUseCase()
		if err != nil {
			c.initErrors["issuerUseCase"] = err
			return
		}
		c.issuerUseCase = useCase
	})
	if storedErr, exists := c.initErrors["issuerUseCase"]; exists {
		return nil, storedErr
	}
	return c.issuerUseCase, nil
}

// BatchIssuerUseCase returns the batch issuance coordinator wrapped with
// business metrics.
func (c *Container) BatchIssuerUseCase() (keyUseCase.BatchIssuerUseCase, error) {
	c.batchIssuerInit.Do(func() {
		useCase, err := c.initBatchIssuerUseCase()
		if err != nil {
			c.initErrors["batchIssuerUseCase"] = err
			return
		}
		c.batchIssuerUseCase = useCase
	})
	if storedErr, exists := c.initErrors["batchIssuerUseCase"]; exists {
		return nil, storedErr
	}
	return c.batchIssuerUseCase, nil
}

func (c *Container) initIssuerUseCase() (keyUseCase.IssuerUseCase, error) {
	signer, err := c.Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer for issuer use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for issuer use case: %w", err)
	}

	useCase := keyUseCase.NewIssuerUseCase(c.Gateway(), signer)

	return keyUseCase.NewIssuerUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initBatchIssuerUseCase() (keyUseCase.BatchIssuerUseCase, error) {
	issuer, err := c.IssuerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer use case for batch issuer: %w", err)
	}

	signer, err := c.Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer for batch issuer: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for batch issuer: %w", err)
	}

	useCase := keyUseCase.NewBatchIssuerUseCase(
		issuer,
		signer,
		c.config.BatchMaxAmount,
		c.config.WhitelistTxCapacity,
	)

	return keyUseCase.NewBatchIssuerUseCaseWithMetrics(useCase, businessMetrics), nil
}
