// Package config loads mirrorctl's configuration from flags, environment
// variables, a config file, and defaults, with that precedence order.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the CLI driver's configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Refresh  Refresh  `mapstructure:"refresh"`
	Logging  Logging  `mapstructure:"logging"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

// Database names the SQLite file and the schema definition bootstrapped into it.
type Database struct {
	Path       string `mapstructure:"path"`
	SchemaFile string `mapstructure:"schema_file"`
}

// Refresh controls one findOutdated/query/ingest round.
type Refresh struct {
	PageSize       int           `mapstructure:"page_size"`
	StaleThreshold time.Duration `mapstructure:"stale_threshold"`
	Demo           bool          `mapstructure:"demo"`
}

// Logging controls internal/logging's handler.
type Logging struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Metrics controls the Prometheus /metrics listener.
type Metrics struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path: must not be empty")
	}
	if !c.Refresh.Demo && strings.TrimSpace(c.Database.SchemaFile) == "" {
		return fmt.Errorf("database.schema_file: must not be empty unless refresh.demo is set")
	}
	if c.Refresh.PageSize < 1 {
		return fmt.Errorf("refresh.page_size: must be at least 1, got %d", c.Refresh.PageSize)
	}
	if c.Refresh.StaleThreshold < 0 {
		return fmt.Errorf("refresh.stale_threshold: must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: invalid value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: invalid value %q", c.Logging.Format)
	}
	return nil
}
