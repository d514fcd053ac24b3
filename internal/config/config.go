package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPHost string `env:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort int    `env:"HTTP_PORT" default:"8000"`
	SiteURL  string `env:"SITE_URL" default:"http://127.0.0.1:8000"`

	// Proxies whose X-Forwarded-For is believed when resolving the client IP
	TrustedProxies []string `env:"TRUSTED_PROXIES" default:""`

	// Database: a postgres DSN/URL or a sqlite file path
	DatabaseURL    string `env:"DATABASE_URL" default:"yatube.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" default:"5"`

	// Sessions
	SessionSecret     string        `env:"SESSION_SECRET" required:"true"`
	SessionTTL        time.Duration `env:"SESSION_TTL" default:"336h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" default:"yatube_session"`
	PasswordResetTTL  time.Duration `env:"PASSWORD_RESET_TTL" default:"72h"`

	// CSRF
	CSRFEnabled bool   `env:"CSRF_ENABLED" default:"true"`
	CSRFKey     string `env:"CSRF_KEY"`

	// Redis page cache (empty URL means in-memory)
	RedisURL      string        `env:"REDIS_URL" default:""`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	IndexCacheTTL time.Duration `env:"INDEX_CACHE_TTL" default:"20s"`

	// Pagination
	PageSize int `env:"PAGE_SIZE" default:"10"`

	// Media
	MediaRoot     string `env:"MEDIA_ROOT" default:"media"`
	MediaURL      string `env:"MEDIA_URL" default:"/media/"`
	UploadMaxSize int64  `env:"UPLOAD_MAX_SIZE" default:"5242880"`

	// Rate limiting for auth form submissions, requests per minute per client
	AuthRateLimitRPM int `env:"AUTH_RATE_LIMIT_RPM" default:"30"`

	// Monitoring
	PrometheusEnabled bool `env:"PROMETHEUS_ENABLED" default:"true"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" default:"debug"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	loadEnvString(&config.GoEnv, "GO_ENV", "development")

	// HTTP
	loadEnvString(&config.HTTPHost, "HTTP_HOST", "127.0.0.1")
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8000); err != nil {
		return nil, err
	}
	loadEnvString(&config.SiteURL, "SITE_URL", fmt.Sprintf("http://%s:%d", config.HTTPHost, config.HTTPPort))
	loadEnvStringSlice(&config.TrustedProxies, "TRUSTED_PROXIES", nil)

	// Database
	loadEnvString(&config.DatabaseURL, "DATABASE_URL", "yatube.db")
	if err := loadEnvInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.DBMaxIdleConns, "DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}

	// Sessions
	if err := loadEnvStringRequired(&config.SessionSecret, "SESSION_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SessionTTL, "SESSION_TTL", 14*24*time.Hour); err != nil {
		return nil, err
	}
	loadEnvString(&config.SessionCookieName, "SESSION_COOKIE_NAME", "yatube_session")
	if err := loadEnvDuration(&config.PasswordResetTTL, "PASSWORD_RESET_TTL", 72*time.Hour); err != nil {
		return nil, err
	}

	// CSRF
	if err := loadEnvBool(&config.CSRFEnabled, "CSRF_ENABLED", true); err != nil {
		return nil, err
	}
	loadEnvString(&config.CSRFKey, "CSRF_KEY", "")

	// Redis
	loadEnvString(&config.RedisURL, "REDIS_URL", "")
	loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", "")
	if err := loadEnvDuration(&config.IndexCacheTTL, "INDEX_CACHE_TTL", 20*time.Second); err != nil {
		return nil, err
	}

	// Pagination
	if err := loadEnvInt(&config.PageSize, "PAGE_SIZE", 10); err != nil {
		return nil, err
	}

	// Media
	loadEnvString(&config.MediaRoot, "MEDIA_ROOT", "media")
	loadEnvString(&config.MediaURL, "MEDIA_URL", "/media/")
	if err := loadEnvInt64(&config.UploadMaxSize, "UPLOAD_MAX_SIZE", 5<<20); err != nil {
		return nil, err
	}

	if err := loadEnvInt(&config.AuthRateLimitRPM, "AUTH_RATE_LIMIT_RPM", 30); err != nil {
		return nil, err
	}

	if err := loadEnvBool(&config.PrometheusEnabled, "PROMETHEUS_ENABLED", true); err != nil {
		return nil, err
	}

	loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug")

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

// loadEnvStringSlice reads a comma separated list, dropping blank items
func loadEnvStringSlice(target *[]string, key string, defaultValue []string) {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*target = items
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	// HS256 wants a key at least as long as the hash output
	if len(c.SessionSecret) < 32 {
		errors = append(errors, "SESSION_SECRET should be at least 32 characters long")
	}

	if c.CSRFEnabled && len(c.CSRFKey) != 32 {
		errors = append(errors, "CSRF_KEY must be exactly 32 bytes when CSRF_ENABLED is true")
	}

	if c.PageSize < 1 {
		errors = append(errors, "PAGE_SIZE must be positive")
	}

	if c.IndexCacheTTL < 0 {
		errors = append(errors, "INDEX_CACHE_TTL must not be negative")
	}

	if c.UploadMaxSize < 1 {
		errors = append(errors, "UPLOAD_MAX_SIZE must be positive")
	}

	if c.MediaURL == "/" || !strings.HasPrefix(c.MediaURL, "/") || !strings.HasSuffix(c.MediaURL, "/") {
		errors = append(errors, "MEDIA_URL must start and end with / and name a directory")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsPostgres reports whether DatabaseURL points at PostgreSQL rather than a sqlite file
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://") ||
		strings.Contains(c.DatabaseURL, "host=")
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
