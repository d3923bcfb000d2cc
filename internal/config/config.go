// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds optional PostgreSQL settings.
// When URL is empty the postgres source and result sink are disabled.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// SourceQuery is the SELECT registered as the "postgres" source.
	SourceQuery string `env:"DB_SOURCE_QUERY"`

	// ExportTable receives the final table of every run when set.
	ExportTable string `env:"DB_EXPORT_TABLE"`
}

// PipelineConfig holds stage and run settings.
type PipelineConfig struct {
	// Epsilon guards ratio denominators (default: 0.001)
	Epsilon float64 `env:"PIPELINE_EPSILON" default:"0.001"`

	// BoundedColumns are clamped at zero by the sanitizer (default: B)
	BoundedColumns []string `env:"PIPELINE_BOUNDED_COLUMNS" default:"B"`

	// MissingCategory replaces missing categorical cells (default: missing)
	MissingCategory string `env:"PIPELINE_MISSING_CATEGORY" default:"missing"`

	// RulesFile is an optional TOML file overriding the stage rules.
	RulesFile string `env:"PIPELINE_RULES_FILE"`

	// SourceDir holds *.csv files registered as sources at startup.
	SourceDir string `env:"PIPELINE_SOURCE_DIR"`

	// MaxConcurrent is the maximum number of parallel runs (default: 4)
	MaxConcurrent int `env:"PIPELINE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a run slot (default: 10s)
	MaxWaitTime time.Duration `env:"PIPELINE_MAX_WAIT_TIME" default:"10s"`

	// RunTimeout bounds a single run including load and export (default: 2m)
	RunTimeout time.Duration `env:"PIPELINE_RUN_TIMEOUT" default:"2m"`

	// MaxUploadSize is the largest accepted CSV body in bytes (default: 32MB)
	MaxUploadSize int64 `env:"PIPELINE_MAX_UPLOAD_SIZE" default:"33554432"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"SECURITY_API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Enabled reports whether a database connection is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}
