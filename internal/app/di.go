// Package app provides the dependency injection container assembling
// application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	commandHTTP "github.com/keygrid/keygrid/internal/command/http"
	commandUseCase "github.com/keygrid/keygrid/internal/command/usecase"
	"github.com/keygrid/keygrid/internal/config"
	"github.com/keygrid/keygrid/internal/crypto"
	"github.com/keygrid/keygrid/internal/http"
	keyHTTP "github.com/keygrid/keygrid/internal/key/http"
	keyUseCase "github.com/keygrid/keygrid/internal/key/usecase"
	"github.com/keygrid/keygrid/internal/ledger"
	"github.com/keygrid/keygrid/internal/metrics"
	registryHTTP "github.com/keygrid/keygrid/internal/registry/http"
	registryUseCase "github.com/keygrid/keygrid/internal/registry/usecase"
)

// Container holds all application dependencies and provides methods to
// access them. Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	gateway         ledger.Gateway
	signer          *crypto.Account
	verifier        *crypto.Verifier
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Use cases
	issuerUseCase      keyUseCase.IssuerUseCase
	batchIssuerUseCase keyUseCase.BatchIssuerUseCase
	authorizerUseCase  commandUseCase.AuthorizerUseCase
	registryUseCase    registryUseCase.RegistryUseCase

	// Handlers
	keyHandler      *keyHTTP.KeyHandler
	commandHandler  *commandHTTP.CommandHandler
	registryHandler *registryHTTP.RegistryHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	gatewayInit         sync.Once
	signerInit          sync.Once
	verifierInit        sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	issuerInit          sync.Once
	batchIssuerInit     sync.Once
	authorizerInit      sync.Once
	registryInit        sync.Once
	keyHandlerInit      sync.Once
	commandHandlerInit  sync.Once
	registryHandlerInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Gateway returns the ledger node client.
func (c *Container) Gateway() ledger.Gateway {
	c.gatewayInit.Do(func() {
		c.gateway = ledger.NewNodeClient(ledger.NodeConfig{
			BaseURL:        c.config.NodeURL,
			RequestTimeout: c.config.NodeRequestTimeout,
			TxTimeout:      c.config.NodeTxTimeout,
		})
	})
	return c.gateway
}

// Signer returns the authority account used to sign outgoing transactions.
func (c *Container) Signer() (*crypto.Account, error) {
	c.signerInit.Do(func() {
		signer, err := c.initSigner()
		if err != nil {
			c.initErrors["signer"] = err
			return
		}
		c.signer = signer
	})
	if storedErr, exists := c.initErrors["signer"]; exists {
		return nil, storedErr
	}
	return c.signer, nil
}

// Verifier returns the transaction signature verifier.
func (c *Container) Verifier() *crypto.Verifier {
	c.verifierInit.Do(func() {
		c.verifier = crypto.NewVerifier(c.config.ChainID)
	})
	return c.verifier
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder
// is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured JSON logger based on the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initSigner builds the authority account from the configured seed.
func (c *Container) initSigner() (*crypto.Account, error) {
	if c.config.AuthoritySeed == "" {
		return nil, fmt.Errorf("AUTHORITY_SEED is not configured")
	}

	account, err := crypto.NewAccountFromSeed(c.config.AuthoritySeed, c.config.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create authority account: %w", err)
	}

	return account, nil
}

// authorityAddress returns the configured authority address, falling back
// to the address derived from the signing seed.
func (c *Container) authorityAddress() (string, error) {
	if c.config.AuthorityAddress != "" {
		return c.config.AuthorityAddress, nil
	}

	signer, err := c.Signer()
	if err != nil {
		return "", err
	}

	return signer.Address(), nil
}
