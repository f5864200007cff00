package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	"github.com/allisson/inspecta/internal/cache/store"
	"github.com/allisson/inspecta/internal/config"
)

const testRoutes = `
routes:
  - name: psv
    path: /psv
    nav: true
    require:
      permission: psv:read
`

// newTestConfig returns a configuration that needs no external services.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	routesFile := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(routesFile, []byte(testRoutes), 0o600); err != nil {
		t.Fatalf("failed to write routes file: %v", err)
	}

	return &config.Config{
		LogLevel:           "error",
		ServerHost:         "localhost",
		ServerPort:         0,
		AuthJWTSecret:      "test-secret-0123456789",
		AuthJWTIssuer:      "inspecta",
		RoutesFile:         routesFile,
		APIBaseURL:         "http://localhost:8000/api/v1",
		APITimeout:         time.Second,
		CacheDriver:        config.CacheDriverMemory,
		MutationOptimistic: true,
		MetricsNamespace:   "test_app",
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := newTestConfig(t)

	container := NewContainer(cfg)

	if container == nil {
		t.Fatal("expected non-nil container")
	}

	if container.Config() != cfg {
		t.Error("container config does not match provided config")
	}
}

// TestContainerLogger verifies that the logger can be retrieved from the container.
func TestContainerLogger(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "debug",
	}

	container := NewContainer(cfg)
	logger := container.Logger()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Calling Logger() again should return the same instance (singleton)
	logger2 := container.Logger()
	if logger != logger2 {
		t.Error("expected same logger instance on multiple calls")
	}
}

// TestContainerLoggerDefaultLevel verifies that logger defaults to info level.
func TestContainerLoggerDefaultLevel(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "invalid",
	}

	container := NewContainer(cfg)
	logger := container.Logger()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

// TestContainerCacheStore verifies the cache driver selection.
func TestContainerCacheStore(t *testing.T) {
	t.Run("Success_Memory", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		cache, err := container.CacheStore()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := cache.(*store.MemoryStore); !ok {
			t.Errorf("expected memory store, got %T", cache)
		}
	})

	t.Run("Success_MemoryEntriesExported", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.MetricsEnabled = true
		container := NewContainer(cfg)
		defer func() { _ = container.Shutdown(context.Background()) }()

		cache, err := container.CacheStore()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		key := cacheDomain.NewKey("report", "inspection_id", "1")
		if _, err := cache.Write(context.Background(), key, json.RawMessage(`[]`), cacheDomain.StatusFresh); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		metricsServer, err := container.MetricsServer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w := httptest.NewRecorder()
		metricsServer.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		pattern := regexp.MustCompile(`test_app_cache_entries\{[^}]*driver="memory"[^}]*\} 1`)
		if !pattern.MatchString(w.Body.String()) {
			t.Errorf("expected one cached entry in the exposition, got:\n%s", w.Body.String())
		}
	})

	t.Run("Error_RedisWithoutAddr", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.CacheDriver = config.CacheDriverRedis
		container := NewContainer(cfg)

		if _, err := container.CacheStore(); err == nil {
			t.Error("expected error without REDIS_ADDR")
		}

		// The stored error is returned on later calls
		if _, err := container.CacheStore(); err == nil {
			t.Error("expected error on second call to CacheStore()")
		}
	})

	t.Run("Error_UnsupportedDriver", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.CacheDriver = "memcached"
		container := NewContainer(cfg)

		if _, err := container.CacheStore(); err == nil {
			t.Error("expected error for unsupported cache driver")
		}
	})
}

// TestContainerAccess verifies the access components are wired from configuration.
func TestContainerAccess(t *testing.T) {
	t.Run("Success_GuardAndHandler", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		table, err := container.RouteTable()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(table.Routes) != 1 {
			t.Errorf("expected 1 route, got %d", len(table.Routes))
		}

		if _, err := container.AccessHandler(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.AuthJWTSecret = ""
		container := NewContainer(cfg)

		if _, err := container.TokenParser(); err == nil {
			t.Error("expected error without AUTH_JWT_SECRET")
		}
	})

	t.Run("Error_MissingRoutesFile", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.RoutesFile = filepath.Join(t.TempDir(), "missing.yaml")
		container := NewContainer(cfg)

		if _, err := container.GuardUseCase(); err == nil {
			t.Error("expected error for missing routes file")
		}
	})
}

// TestContainerReports verifies the report components are wired from configuration.
func TestContainerReports(t *testing.T) {
	t.Run("Success_UseCaseAndHandler", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		if _, err := container.ReportHandler(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if container.synchronizer == nil {
			t.Error("expected synchronizer to be initialized")
		}
	})

	t.Run("Error_InvalidBaseURL", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.APIBaseURL = "not a url"
		container := NewContainer(cfg)

		if _, err := container.ReportUseCase(); err == nil {
			t.Error("expected error for invalid API_BASE_URL")
		}
	})
}

// TestContainerServers verifies server wiring with and without metrics.
func TestContainerServers(t *testing.T) {
	t.Run("Success_MetricsDisabled", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		if _, err := container.HTTPServer(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		metricsServer, err := container.MetricsServer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if metricsServer != nil {
			t.Error("expected no metrics server when metrics are disabled")
		}

		if err := container.Shutdown(context.Background()); err != nil {
			t.Errorf("unexpected error during shutdown: %v", err)
		}
	})

	t.Run("Success_MetricsEnabled", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.MetricsEnabled = true
		container := NewContainer(cfg)

		if _, err := container.HTTPServer(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		metricsServer, err := container.MetricsServer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if metricsServer == nil {
			t.Error("expected metrics server when metrics are enabled")
		}

		if err := container.Shutdown(context.Background()); err != nil {
			t.Errorf("unexpected error during shutdown: %v", err)
		}
	})
}

// TestContainerLazyInitialization verifies that components are only initialized when accessed.
func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(newTestConfig(t))

	if container.logger != nil {
		t.Error("expected logger to be nil before first access")
	}
	if container.cacheStore != nil {
		t.Error("expected cache store to be nil before first access")
	}

	if _, err := container.Synchronizer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if container.logger == nil {
		t.Error("expected logger to be initialized after access")
	}
	if container.cacheStore == nil {
		t.Error("expected cache store to be initialized by the synchronizer")
	}
}

// TestContainerShutdown verifies that the shutdown method can be called safely.
func TestContainerShutdown(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "info",
	}

	container := NewContainer(cfg)

	// Shutdown should not fail even if no components are initialized
	if err := container.Shutdown(context.TODO()); err != nil {
		t.Errorf("unexpected error during shutdown: %v", err)
	}
}
