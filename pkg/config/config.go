package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rentloop/rentloop/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Images        ImageConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string

	// PublicBaseURL is the externally visible base used when building
	// image URLs
	PublicBaseURL string

	// AllowedOrigins are CORS origins for the browser client
	AllowedOrigins []string
}

// DatabaseConfig holds SQL storage configuration. Postgres in production,
// sqlite for local development.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// CacheConfig holds the optional redis cache configuration. An empty URL
// disables caching entirely.
type CacheConfig struct {
	RedisURL      string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// ImageConfig holds image storage configuration
type ImageConfig struct {
	// Type selects the backend: filesystem or s3
	Type string

	FilesystemDir string

	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// LRUSize is the entry count of the in-process read cache
	LRUSize int
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	// TokenSecret is the HS256 signing key. Rotating it invalidates every
	// outstanding token.
	TokenSecret string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("RENTLOOP_HOST", "0.0.0.0"),
			Port:            getEnv("RENTLOOP_PORT", "8080"),
			ReadTimeout:     getEnvDuration("RENTLOOP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("RENTLOOP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("RENTLOOP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("RENTLOOP_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("RENTLOOP_HEALTH_PORT", "9090"),
			PublicBaseURL:   getEnv("RENTLOOP_PUBLIC_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:  strings.Split(getEnv("RENTLOOP_CORS_ORIGINS", "*"), ","),
		},
		Database: DatabaseConfig{
			Driver: getEnv("RENTLOOP_DB_DRIVER", "postgres"),
			DSN:    getEnv("RENTLOOP_DB_DSN", ""),
		},
		Cache: CacheConfig{
			RedisURL:      getEnv("RENTLOOP_REDIS_URL", ""),
			RedisPassword: getEnv("RENTLOOP_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("RENTLOOP_REDIS_DB", 0),
			TTL:           getEnvDuration("RENTLOOP_CACHE_TTL", 5*time.Minute),
		},
		Images: ImageConfig{
			Type:           getEnv("RENTLOOP_IMAGE_STORE", "filesystem"),
			FilesystemDir:  getEnv("RENTLOOP_IMAGE_DIR", "./data/images"),
			S3Endpoint:     getEnv("RENTLOOP_S3_ENDPOINT", ""),
			S3Region:       getEnv("RENTLOOP_S3_REGION", "us-east-1"),
			S3Bucket:       getEnv("RENTLOOP_S3_BUCKET", ""),
			S3AccessKey:    getEnv("RENTLOOP_S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("RENTLOOP_S3_SECRET_KEY", ""),
			S3UsePathStyle: getEnvBool("RENTLOOP_S3_USE_PATH_STYLE", false),
			LRUSize:        getEnvInt("RENTLOOP_IMAGE_CACHE_SIZE", 128),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("RENTLOOP_TOKEN_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("RENTLOOP_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("RENTLOOP_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	switch c.Images.Type {
	case "filesystem":
		if c.Images.FilesystemDir == "" {
			return fmt.Errorf("image directory is required for filesystem image storage")
		}
	case "s3":
		if c.Images.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 image storage")
		}
	default:
		return fmt.Errorf("invalid image store type: %s (must be filesystem or s3)", c.Images.Type)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
