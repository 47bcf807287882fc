// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	// Port the operational HTTP surface listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// RedisURL is the address of the Redis instance backing the durable
	// method cache and the shared request budget state.
	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`

	// PostgresURL is the connection string of the history database.
	// History persistence falls back to an in-memory store when empty.
	PostgresURL string `env:"POSTGRES_URL"`

	// APIToken authenticates against the football data provider.
	APIToken string `env:"FOOTBALL_API_TOKEN"`

	// APIBaseURL overrides the provider endpoint (tests, proxies).
	APIBaseURL string `env:"FOOTBALL_API_BASE_URL" envDefault:"https://api.football-data.org"`

	// LogLevel is the minimum level to emit (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogPretty enables human-readable console output.
	LogPretty bool `env:"LOG_PRETTY" envDefault:"false"`

	// ResultTTL is the in-memory cache entry lifetime.
	ResultTTL time.Duration `env:"RESULT_TTL" envDefault:"60m"`

	// MethodCacheTTL is the durable cache row lifetime.
	MethodCacheTTL time.Duration `env:"METHOD_CACHE_TTL" envDefault:"5m"`

	// SweepInterval is the cadence of both background sweeps.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the env tags cannot express.
func (c *Config) Validate() error {
	if c.ResultTTL <= 0 {
		return fmt.Errorf("RESULT_TTL must be positive, got %s", c.ResultTTL)
	}
	if c.MethodCacheTTL <= 0 {
		return fmt.Errorf("METHOD_CACHE_TTL must be positive, got %s", c.MethodCacheTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	return nil
}
