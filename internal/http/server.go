package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	commandHTTP "github.com/keygrid/keygrid/internal/command/http"
	keyHTTP "github.com/keygrid/keygrid/internal/key/http"
	"github.com/keygrid/keygrid/internal/ledger"
	registryHTTP "github.com/keygrid/keygrid/internal/registry/http"
)

// Server is the Gin-based API server.
type Server struct {
	server  *http.Server
	router  *gin.Engine
	gateway ledger.Reader
	logger  *slog.Logger
}

// NewServer creates the API server with health and readiness endpoints
// already registered. Route groups are added with RegisterRoutes and
// middleware with SetupCORS and UseMetrics before starting the server.
func NewServer(
	gateway ledger.Reader,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	s := &Server{
		router:  router,
		gateway: gateway,
		logger:  logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	return s
}

// SetupCORS installs the CORS middleware when enabled. Must be called
// before RegisterRoutes so the middleware applies to the API routes.
func (s *Server) SetupCORS(enabled bool, allowOrigins string) {
	if middleware := createCORSMiddleware(enabled, allowOrigins, s.logger); middleware != nil {
		s.router.Use(middleware)
	}
}

// UseMetrics installs the HTTP metrics middleware. Must be called before
// RegisterRoutes.
func (s *Server) UseMetrics(middleware gin.HandlerFunc) {
	if middleware != nil {
		s.router.Use(middleware)
	}
}

// RegisterRoutes wires the API route groups. Nil handlers are skipped,
// which keeps partial setups usable in tests.
func (s *Server) RegisterRoutes(
	keyHandler *keyHTTP.KeyHandler,
	commandHandler *commandHTTP.CommandHandler,
	registryHandler *registryHTTP.RegistryHandler,
) {
	v1 := s.router.Group("/v1")

	if keyHandler != nil {
		v1.POST("/keys", keyHandler.IssueHandler)
		v1.POST("/keys/batch", keyHandler.BatchIssueHandler)
		v1.GET("/keys/:id", keyHandler.GetHandler)
		v1.POST("/keys/:id/transfer", keyHandler.TransferHandler)
		v1.DELETE("/keys/:id", keyHandler.RevokeHandler)
	}

	if commandHandler != nil {
		v1.POST("/devices/:address/commands", commandHandler.AuthorizeHandler)
	}

	if registryHandler != nil {
		v1.POST("/devices", registryHandler.RegisterDeviceHandler)
		v1.GET("/devices", registryHandler.ListDevicesHandler)
		v1.GET("/devices/:address", registryHandler.GetDeviceHandler)
		v1.DELETE("/devices/:address", registryHandler.DeregisterDeviceHandler)
		v1.POST("/organisations", registryHandler.WhitelistOrganisationHandler)
		v1.DELETE("/organisations/:address", registryHandler.RemoveOrganisationHandler)
		v1.POST("/organisations/:address/members", registryHandler.AddMemberHandler)
		v1.DELETE("/organisations/:address/members/:member", registryHandler.RemoveMemberHandler)
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the ledger node is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"ledger_node": "ok"}

	if s.gateway == nil {
		components["ledger_node"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.gateway.FetchHeight(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["ledger_node"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
