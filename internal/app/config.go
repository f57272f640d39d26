package app

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied when neither the command line nor the config file sets a
// value.
const (
	DefaultConfigPath   = "explorer.hcl"
	DefaultContractsDir = "src/contracts"
	DefaultListen       = "127.0.0.1:8700"
)

// Config holds the settings an App is created with. Empty fields fall back to
// the config file, then to the defaults above.
type Config struct {
	ConfigPath   string // explorer.hcl
	ContractsDir string // contract manifests
	Listen       string
	Network      string

	LogFormat string
	LogLevel  string
	LogFile   string

	LoadConcurrency int
	MetadataTTL     time.Duration

	OpenOnStart bool
	Placement   string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.Placement {
	case "", "left", "right":
	default:
		return nil, fmt.Errorf("invalid placement %q: must be 'left' or 'right'", cfg.Placement)
	}
	if cfg.LoadConcurrency < 0 {
		return nil, errors.New("load concurrency cannot be negative")
	}
	if cfg.MetadataTTL < 0 {
		return nil, errors.New("metadata TTL cannot be negative")
	}
	return &cfg, nil
}
