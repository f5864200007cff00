// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	accessHTTP "github.com/allisson/inspecta/internal/access/http"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	"github.com/allisson/inspecta/internal/cache/store"
	"github.com/allisson/inspecta/internal/config"
	"github.com/allisson/inspecta/internal/http"
	"github.com/allisson/inspecta/internal/metrics"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	reportHTTP "github.com/allisson/inspecta/internal/report/http"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

// CacheStore is a cache handle that can report its reachability.
type CacheStore interface {
	cacheDomain.Handle
	Ping(ctx context.Context) error
}

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	redisClient     redis.UniversalClient
	cacheStore      CacheStore

	// Access
	routeTable    *accessUseCase.RouteTable
	tokenParser   accessHTTP.TokenParser
	guardUseCase  accessUseCase.GuardUseCase
	accessHandler *accessHTTP.AccessHandler

	// Mutations and reports
	synchronizer  mutationUsecase.SynchronizerUseCase
	reportAPI     mutationUsecase.EntityAPI[reportDomain.Report]
	reportUseCase reportUseCase.ReportUseCase
	reportHandler *reportHTTP.ReportHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	cacheStoreInit      sync.Once
	routeTableInit      sync.Once
	tokenParserInit     sync.Once
	guardUseCaseInit    sync.Once
	accessHandlerInit   sync.Once
	synchronizerInit    sync.Once
	reportAPIInit       sync.Once
	reportUseCaseInit   sync.Once
	reportHandlerInit   sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
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
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// CacheStore returns the cache backend selected by CACHE_DRIVER.
func (c *Container) CacheStore() (CacheStore, error) {
	var err error
	c.cacheStoreInit.Do(func() {
		c.cacheStore, err = c.initCacheStore()
		if err != nil {
			c.initErrors["cacheStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cacheStore"]; exists {
		return nil, storedErr
	}
	return c.cacheStore, nil
}

// HTTPServer returns the HTTP server instance with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// In-flight mutations are drained before the cache backend is closed.
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

	if c.synchronizer != nil {
		if err := c.synchronizer.Drain(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("mutation drain: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
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

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), provider.Namespace())
}

// initCacheStore creates the memory or redis cache backend.
func (c *Container) initCacheStore() (CacheStore, error) {
	switch c.config.CacheDriver {
	case config.CacheDriverMemory, "":
		memory := store.NewMemoryStore(c.config.CacheTTL, c.config.CacheCleanupInterval)
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for cache metrics: %w", err)
		}
		if provider != nil {
			if err := metrics.RegisterCacheEntries(provider.MeterProvider(), provider.Namespace(),
				config.CacheDriverMemory, memory); err != nil {
				return nil, fmt.Errorf("failed to register cache metrics: %w", err)
			}
		}
		return memory, nil
	case config.CacheDriverRedis:
		if c.config.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis cache driver")
		}
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		return store.NewRedisStore(c.redisClient, c.config.RedisPrefix, c.config.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", c.config.CacheDriver)
	}
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	cache, err := c.CacheStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache store for http server: %w", err)
	}

	tokenParser, err := c.TokenParser()
	if err != nil {
		return nil, fmt.Errorf("failed to get token parser for http server: %w", err)
	}

	guardUseCase, err := c.GuardUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get guard use case for http server: %w", err)
	}

	accessHandler, err := c.AccessHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get access handler for http server: %w", err)
	}

	reportHandler, err := c.ReportHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get report handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(cache, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, tokenParser, guardUseCase, accessHandler, reportHandler, provider)

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
