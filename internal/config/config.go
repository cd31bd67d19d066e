// Package config provides centralized configuration management for the
// dataview server and terminal viewer. Settings come from environment
// variables (optionally seeded from a .env file) with defaults, and are
// validated on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	View      ViewConfig
	Normalize NormalizeConfig
	Session   SessionConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds the optional load-history database settings.
// An empty URL keeps history in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a history database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// UploadConfig holds file load settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes (default: 10 MiB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of loads processed at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a load waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single load, parse included (default: 30s)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"30s"`
}

// ViewConfig holds table view settings.
type ViewConfig struct {
	PageSize    int    `env:"VIEW_PAGE_SIZE" default:"50"`
	Placeholder string `env:"VIEW_PLACEHOLDER" default:"x"`
}

// NormalizeConfig holds field and value normalization settings.
type NormalizeConfig struct {
	// PreserveLeadingZeros keeps digit strings such as "00123" as text.
	PreserveLeadingZeros bool `env:"NORMALIZE_PRESERVE_LEADING_ZEROS" default:"false"`

	// DictionaryPath points to a YAML field dictionary replacing the built-in one.
	DictionaryPath string `env:"FIELD_DICTIONARY_PATH"`
}

// SessionConfig holds viewer session settings for the HTTP server.
type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" default:"30m"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" default:"dataview_session"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File is where the terminal viewer writes logs; empty discards them.
	File string `env:"LOG_FILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
