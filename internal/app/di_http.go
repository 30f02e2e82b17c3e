package app

import (
	"fmt"

	commandHTTP "github.com/keygrid/keygrid/internal/command/http"
	"github.com/keygrid/keygrid/internal/http"
	keyHTTP "github.com/keygrid/keygrid/internal/key/http"
	"github.com/keygrid/keygrid/internal/metrics"
	registryHTTP "github.com/keygrid/keygrid/internal/registry/http"
)

// KeyHandler returns the key lifecycle HTTP handler.
func (c *Container) KeyHandler() (*keyHTTP.KeyHandler, error) {
	c.keyHandlerInit.Do(func() {
		handler, err := c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
			return
		}
		c.keyHandler = handler
	})
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// CommandHandler returns the command authorization HTTP handler.
func (c *Container) CommandHandler() (*commandHTTP.CommandHandler, error) {
	c.commandHandlerInit.Do(func() {
		handler, err := c.initCommandHandler()
		if err != nil {
			c.initErrors["commandHandler"] = err
			return
		}
		c.commandHandler = handler
	})
	if storedErr, exists := c.initErrors["commandHandler"]; exists {
		return nil, storedErr
	}
	return c.commandHandler, nil
}

// RegistryHandler returns the device and organisation registry HTTP handler.
func (c *Container) RegistryHandler() (*registryHTTP.RegistryHandler, error) {
	c.registryHandlerInit.Do(func() {
		handler, err := c.initRegistryHandler()
		if err != nil {
			c.initErrors["registryHandler"] = err
			return
		}
		c.registryHandler = handler
	})
	if storedErr, exists := c.initErrors["registryHandler"]; exists {
		return nil, storedErr
	}
	return c.registryHandler, nil
}

// HTTPServer returns the API server with all routes and middleware wired.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

func (c *Container) initKeyHandler() (*keyHTTP.KeyHandler, error) {
	issuer, err := c.IssuerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer use case for key handler: %w", err)
	}

	batchIssuer, err := c.BatchIssuerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get batch issuer use case for key handler: %w", err)
	}

	return keyHTTP.NewKeyHandler(issuer, batchIssuer, c.Logger()), nil
}

func (c *Container) initCommandHandler() (*commandHTTP.CommandHandler, error) {
	authorizer, err := c.AuthorizerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorizer use case for command handler: %w", err)
	}

	return commandHTTP.NewCommandHandler(authorizer, c.Logger()), nil
}

func (c *Container) initRegistryHandler() (*registryHTTP.RegistryHandler, error) {
	registry, err := c.RegistryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry use case for registry handler: %w", err)
	}

	return registryHTTP.NewRegistryHandler(registry, c.Logger()), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	keyHandler, err := c.KeyHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get key handler for http server: %w", err)
	}

	commandHandler, err := c.CommandHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get command handler for http server: %w", err)
	}

	registryHandler, err := c.RegistryHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry handler for http server: %w", err)
	}

	server := http.NewServer(c.Gateway(), c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupCORS(c.config.CORSEnabled, c.config.CORSAllowOrigins)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		server.UseMetrics(metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace))
	}

	server.RegisterRoutes(keyHandler, commandHandler, registryHandler)

	return server, nil
}
