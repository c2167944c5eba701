package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

const (
	EnvLoggingLevel  = "DOCSORT_LOG_LEVEL"
	EnvLoggingFormat = "DOCSORT_LOG_FORMAT"
)

// LoggingConfig holds the root logger level and output format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel maps Level onto a slog level. Unknown values fall back to info.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSON reports whether records are written as JSON rather than text.
func (c *LoggingConfig) JSON() bool {
	return strings.EqualFold(c.Format, "json")
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	envvar.String(&c.Level, EnvLoggingLevel)
	envvar.String(&c.Format, EnvLoggingFormat)
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

func (c *LoggingConfig) validate() error {
	switch strings.ToLower(c.Format) {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("invalid format %q: want text or json", c.Format)
}
