// Package config loads carcheck's diagnostic settings.
// Settings never change validation results; they only shape logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvLogLevel  = "CARCHECK_LOG_LEVEL"
	EnvLogFormat = "CARCHECK_LOG_FORMAT"
	EnvConfig    = "CARCHECK_CONFIG"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds carcheck configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// Default returns the quiet defaults used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:  "WARN",
		LogFormat: FormatText,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CARCHECK_CONFIG, and then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfig); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// Validate rejects unknown levels and formats.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format %q (want %q or %q)", c.LogFormat, FormatText, FormatJSON)
	}
}

// SlogLevel returns the configured level, falling back to WARN.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// JSONLogs reports whether the JSON handler was selected.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, FormatJSON)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
