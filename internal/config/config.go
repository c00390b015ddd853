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
	Data     DataConfig
	Database DatabaseConfig
	Lookup   LookupConfig
	Session  SessionConfig
	Summary  SummaryConfig
	Rate     RateLimitConfig
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

	// WriteTimeout is the maximum duration for writing a response (default: 90s).
	// Must exceed SUMMARY_TIMEOUT so summary pages can finish rendering.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DataConfig lists the tabular sources loaded at startup.
//
// A source is a file path (.csv or .xlsx, optionally "file.xlsx#Sheet") or
// "pg:schema.table" to read a Postgres table through DATABASE_URL.
type DataConfig struct {
	// FactbookSources are concatenated in order into the Factbook.
	FactbookSources []string `env:"FACTBOOK_SOURCES" default:"data/Factbook_CAM.csv,data/Factbook_Peru.csv"`

	// PipelineSources are concatenated in order into the Pipeline.
	PipelineSources []string `env:"PIPELINE_SOURCES" default:"data/Pipeline.csv"`

	// MappingSource is an optional brand -> company mapping table.
	MappingSource string `env:"MAPPING_SOURCE"`

	// LoadTimeout bounds a full load or reload (default: 2m)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"2m"`
}

// DatabaseConfig holds database connection settings for "pg:" sources.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Only needed for pg: sources.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// LookupConfig controls matching output and presentation.
type LookupConfig struct {
	// KeyFacts are the columns shown in the key info summary, in order.
	KeyFacts []string `env:"LOOKUP_KEY_FACTS" default:"Section/Column,Categoría,País,Love brand,Score según matriz"`

	// HiddenColumns are always removed from result views.
	HiddenColumns []string `env:"LOOKUP_HIDDEN_COLUMNS" default:"Unnamed: 0"`
}

// SessionConfig controls per-user tag logs.
type SessionConfig struct {
	// CookieName carries the session id (default: buyside_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"buyside_session"`

	// TTL is how long an idle session keeps its tags (default: 12h)
	TTL time.Duration `env:"SESSION_TTL" default:"12h"`

	// SweepInterval is how often idle sessions are evicted (default: 10m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`

	// MaxTags caps the number of tags a session can add (default: 500)
	MaxTags int `env:"SESSION_MAX_TAGS" default:"500"`

	// SecureCookie sets the Secure attribute on the session cookie (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// SummaryConfig holds AI summary settings.
// Summaries are disabled when APIKey is empty.
type SummaryConfig struct {
	// APIKey is the Anthropic API key
	APIKey string `env:"ANTHROPIC_API_KEY"`

	// Model is the Anthropic model id (default: claude-haiku-4-5-20251001)
	Model string `env:"SUMMARY_MODEL" default:"claude-haiku-4-5-20251001"`

	// MaxTokens bounds the generated summary (default: 600)
	MaxTokens int `env:"SUMMARY_MAX_TOKENS" default:"600"`

	// Timeout bounds a single summary call (default: 45s)
	Timeout time.Duration `env:"SUMMARY_TIMEOUT" default:"45s"`

	// MaxConcurrent caps simultaneous summary calls (default: 4)
	MaxConcurrent int `env:"SUMMARY_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a summary waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"SUMMARY_MAX_WAIT" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// SummaryLimit is requests per minute for summary endpoints (default: 10)
	SummaryLimit int `env:"RATE_LIMIT_SUMMARY" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects administrative endpoints (reload) (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// AllowedOrigins enables CORS for the JSON API when non-empty
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
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

// SummaryEnabled reports whether an API key is configured.
func (c *SummaryConfig) SummaryEnabled() bool {
	return c.APIKey != ""
}
