package config

import (
	"time"
)

// Config represents the complete application configuration. Values merge
// three layers: built-in defaults, the user config file discovered via the
// app identity, and WORKLANE_* environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Health   HealthConfig   `mapstructure:"health"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Workers  int            `mapstructure:"workers"`

	RateLimits map[string]RateLimitConfig `mapstructure:"rate_limits"`
}

// APIConfig contains Worklane API connection settings.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AuthToken      string        `mapstructure:"auth_token"`
	OrganizationID string        `mapstructure:"organization_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ServerConfig sets the HTTP listener address and timeouts.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig points at the libsql cache database, either a local file
// or a remote Turso URL.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains response cache settings. TTLs maps endpoint
// prefixes to lifetimes; endpoints without a listed prefix use DefaultTTL.
type CacheConfig struct {
	Enabled    bool                     `mapstructure:"enabled"`
	DefaultTTL time.Duration            `mapstructure:"default_ttl"`
	TTLs       map[string]time.Duration `mapstructure:"ttls"`
	MaxBytes   int64                    `mapstructure:"max_bytes"`
	MaxEntries int                      `mapstructure:"max_entries"`
}

// ResolverConfig contains resolve cache lifetimes.
type ResolverConfig struct {
	ExactTTL time.Duration `mapstructure:"exact_ttl"`
	FuzzyTTL time.Duration `mapstructure:"fuzzy_ttl"`
}

// RateLimitConfig overrides one API rate limit class. Zero fields keep
// the documented Worklane quota for that class.
type RateLimitConfig struct {
	Limit      int           `mapstructure:"limit"`
	Window     time.Duration `mapstructure:"window"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// LoggingConfig selects the gofulmen logging profile and minimum level.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Profile is SIMPLE (console-only CLI output), STRUCTURED
	// (correlation-aware sinks for the server), or ENTERPRISE.
	Profile string `mapstructure:"profile"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port serves the Prometheus text format. The JSON mirror stays on
	// the main HTTP port.
	Port int `mapstructure:"port"`
}

// HealthConfig toggles the health probe endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig toggles debug mode. Pprof stays off outside development.
type DebugConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
