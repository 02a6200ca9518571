// Package http provides the HTTP server that dispatches authenticated requests to the
// claim registry.
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

	authHTTP "github.com/allisson/claims/internal/auth/http"
	authService "github.com/allisson/claims/internal/auth/service"
	authUseCase "github.com/allisson/claims/internal/auth/usecase"
	claimsHTTP "github.com/allisson/claims/internal/claims/http"
	"github.com/allisson/claims/internal/config"
	"github.com/allisson/claims/internal/metrics"
)

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type noDatabase struct{}

func (noDatabase) PingContext(context.Context) error { return nil }

// NoDatabase is the Pinger of deployments running on the in-memory stores.
var NoDatabase Pinger = noDatabase{}

// Server is the public API server.
type Server struct {
	db     Pinger
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Routes are registered by SetupRouter.
func NewServer(db Pinger, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
func (s *Server) SetupRouter(
	cfg *config.Config,
	tokenHandler *authHTTP.TokenHandler,
	registryHandler *claimsHTTP.RegistryHandler,
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	tokenRoute := []gin.HandlerFunc{}
	if cfg.RateLimitEnabled {
		tokenRoute = append(tokenRoute,
			authHTTP.TokenRateLimitMiddleware(cfg.RateLimitTokenRequestsPerSec, cfg.RateLimitTokenBurst, s.logger))
	}
	tokenRoute = append(tokenRoute, tokenHandler.IssueTokenHandler)
	v1.POST("/token", tokenRoute...)

	claims := v1.Group("/claims")
	claims.Use(authHTTP.AuthenticationMiddleware(tokenUseCase, tokenService, s.logger))
	if cfg.RateLimitEnabled {
		claims.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	claims.POST("", registryHandler.CreateHandler)
	claims.GET("", registryHandler.ListHandler)
	claims.GET("/:claim", registryHandler.GetHandler)
	claims.DELETE("/:claim", registryHandler.RevokeHandler)
	claims.POST("/:claim/transfer", registryHandler.TransferHandler)

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the database with a short timeout.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
