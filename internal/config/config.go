// Package config loads recdb settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores the CLI configuration.
// Loaded from a YAML file; missing fields keep their defaults.
type Config struct {
	// Data is the dataset file to load (.jsonl or .yaml).
	Data string `yaml:"data"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ReloadInterval is the minimum delay between two dataset reloads in
	// watch mode. 0 reloads on every change.
	ReloadInterval time.Duration `yaml:"reload_interval"`

	// Limit caps the number of records printed per query.
	// 0 means unlimited.
	Limit int `yaml:"limit"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Data:           "records.jsonl",
		LogLevel:       "info",
		ReloadInterval: time.Second,
	}
}

// Load reads the config at path. A missing file yields [Default].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: config path is provided by the CLI user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Data == "" {
		return errors.New("data is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ReloadInterval < 0 {
		return errors.New("reload_interval must be non-negative")
	}
	if c.Limit < 0 {
		return errors.New("limit must be non-negative")
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}
