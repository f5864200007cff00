// Package http provides HTTP server implementation and request handlers.
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

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	accessHTTP "github.com/allisson/inspecta/internal/access/http"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
	"github.com/allisson/inspecta/internal/config"
	"github.com/allisson/inspecta/internal/metrics"
	reportHTTP "github.com/allisson/inspecta/internal/report/http"
)

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	cache  Pinger
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	// ctx bounds background work started by middlewares; cancelled on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new HTTP server
func NewServer(
	cache Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cache:  cache,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	tokenParser accessHTTP.TokenParser,
	guardUseCase accessUseCase.GuardUseCase,
	accessHandler *accessHTTP.AccessHandler,
	reportHandler *reportHTTP.ReportHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

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
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(accessHTTP.AuthenticationMiddleware(tokenParser, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(accessHTTP.RateLimitMiddleware(s.ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	guard := func(req accessDomain.Requirement) gin.HandlerFunc {
		return accessHTTP.GuardMiddleware(guardUseCase, req, s.logger)
	}

	access := v1.Group("/access")
	{
		access.GET("/me", accessHandler.MeHandler)
		access.POST("/evaluate", accessHandler.EvaluateHandler)
		access.GET("/check", accessHandler.CheckRouteHandler)
		access.GET("/routes",
			guard(accessDomain.RequireRole(accessDomain.GlobalAdminRole)),
			accessHandler.ListRoutesHandler,
		)
	}

	reports := v1.Group("/inspections/:inspection_id/reports")
	{
		reports.GET("", guard(accessDomain.RequirePermission("report", "read")), reportHandler.ListHandler)
		reports.POST("", guard(accessDomain.RequirePermission("report", "create")), reportHandler.CreateHandler)
		reports.PATCH("/:id", guard(accessDomain.RequirePermission("report", "update")), reportHandler.UpdateHandler)
		reports.DELETE("/:id", guard(accessDomain.RequirePermission("report", "delete")), reportHandler.DeleteHandler)
	}

	s.router = router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	defer s.cancel()
	return s.server.Shutdown(ctx)
}

// healthHandler reports that the process is alive.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the cache backend is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"cache": "error"},
		})
		return
	}

	if err := s.cache.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"cache": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"cache": "ok"},
	})
}
