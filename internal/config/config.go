// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Cache drivers.
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds the graceful shutdown of servers and in-flight mutations.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AuthJWTSecret is the HMAC secret used to verify (and, for the token command, sign) JWTs.
	AuthJWTSecret string
	// AuthJWTIssuer is the expected "iss" claim. Empty disables the check.
	AuthJWTIssuer string
	// AuthTokenExpiration is the lifetime of tokens issued by the token command.
	AuthTokenExpiration time.Duration

	// RoutesFile is the YAML route table used for guarded navigation.
	RoutesFile string

	// APIBaseURL is the inspection REST API the mutations are dispatched to.
	APIBaseURL string
	// APIToken is sent as a bearer token to the inspection API.
	APIToken string
	// APITimeout is the per-request timeout of API calls.
	APITimeout time.Duration

	// CacheDriver selects the cache backend ("memory" or "redis").
	CacheDriver string
	// CacheTTL is the lifetime of cached query results.
	CacheTTL time.Duration
	// CacheCleanupInterval is how often expired in-memory entries are purged.
	CacheCleanupInterval time.Duration

	// RedisAddr is the address of the redis server.
	RedisAddr string
	// RedisPassword is the redis password.
	RedisPassword string
	// RedisDB is the redis database number.
	RedisDB int
	// RedisPrefix namespaces the cache keys in redis.
	RedisPrefix string

	// MutationOptimistic enables optimistic projections for writes.
	MutationOptimistic bool
	// MutationRetryMax is how many times transient write failures are retried. Zero disables retry.
	MutationRetryMax int
	// MutationRetryInitialInterval is the first retry backoff interval.
	MutationRetryInitialInterval time.Duration

	// RateLimitEnabled indicates whether rate limiting for authenticated endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for authenticated endpoints.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for authenticated endpoints rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Auth
		AuthJWTSecret:       env.GetString("AUTH_JWT_SECRET", ""),
		AuthJWTIssuer:       env.GetString("AUTH_JWT_ISSUER", "inspecta"),
		AuthTokenExpiration: env.GetDuration("AUTH_TOKEN_EXPIRATION_SECONDS", 3600, time.Second),

		// Guarded navigation
		RoutesFile: env.GetString("ROUTES_FILE", "configs/routes.yaml"),

		// Inspection API
		APIBaseURL: env.GetString("API_BASE_URL", "http://localhost:8000/api/v1"),
		APIToken:   env.GetString("API_TOKEN", ""),
		APITimeout: env.GetDuration("API_TIMEOUT_SECONDS", 10, time.Second),

		// Cache
		CacheDriver:          env.GetString("CACHE_DRIVER", CacheDriverMemory),
		CacheTTL:             env.GetDuration("CACHE_TTL_SECONDS", 300, time.Second),
		CacheCleanupInterval: env.GetDuration("CACHE_CLEANUP_INTERVAL_SECONDS", 600, time.Second),

		// Redis
		RedisAddr:     env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env.GetString("REDIS_PASSWORD", ""),
		RedisDB:       env.GetInt("REDIS_DB", 0),
		RedisPrefix:   env.GetString("REDIS_PREFIX", "inspecta:"),

		// Mutations
		MutationOptimistic:           env.GetBool("MUTATION_OPTIMISTIC", true),
		MutationRetryMax:             env.GetInt("MUTATION_RETRY_MAX", 0),
		MutationRetryInitialInterval: env.GetDuration("MUTATION_RETRY_INITIAL_INTERVAL_MS", 200, time.Millisecond),

		// Rate Limiting (authenticated endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "inspecta"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
