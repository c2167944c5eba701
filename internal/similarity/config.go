package similarity

import (
	"fmt"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

// Config holds ensemble weights and search limits.
type Config struct {
	Weights      Weights `toml:"weights"`
	CacheSize    int     `toml:"cache_size"`
	DefaultLimit int     `toml:"default_limit"`
	MaxLimit     int     `toml:"max_limit"`
}

// Env maps Config fields to environment variable names.
type Env struct {
	Weights      *WeightsEnv
	CacheSize    string
	DefaultLimit string
	MaxLimit     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()

	var wenv *WeightsEnv
	if env != nil {
		envvar.Int(&c.CacheSize, env.CacheSize)
		envvar.Int(&c.DefaultLimit, env.DefaultLimit)
		envvar.Int(&c.MaxLimit, env.MaxLimit)
		wenv = env.Weights
	}

	if err := c.Weights.Finalize(wenv); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	c.Weights.Merge(&overlay.Weights)
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.DefaultLimit != 0 {
		c.DefaultLimit = overlay.DefaultLimit
	}
	if overlay.MaxLimit != 0 {
		c.MaxLimit = overlay.MaxLimit
	}
}

// Limit clamps a requested result count to the configured bounds.
func (c *Config) Limit(requested int) int {
	if requested < 1 {
		return c.DefaultLimit
	}
	return min(requested, c.MaxLimit)
}

func (c *Config) loadDefaults() {
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = 5
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = 50
	}
}

func (c *Config) validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative: got %d", c.CacheSize)
	}
	if c.DefaultLimit < 1 || c.MaxLimit < 1 {
		return fmt.Errorf("search limits must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit %d exceeds max_limit %d", c.DefaultLimit, c.MaxLimit)
	}
	return nil
}
