package storage

import (
	"fmt"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

// Config holds Azure Blob Storage connection parameters.
// Either ConnectionString or AccountURL must be set when Enabled. AccountURL
// authenticates through the default Azure credential chain.
type Config struct {
	Enabled          bool   `toml:"enabled"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Prefix           string `toml:"prefix"`
	MaxListSize      int    `toml:"max_list_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled          string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Prefix           string
	MaxListSize      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.String(&c.ContainerName, env.ContainerName)
		envvar.String(&c.ConnectionString, env.ConnectionString)
		envvar.String(&c.AccountURL, env.AccountURL)
		envvar.String(&c.Prefix, env.Prefix)
		envvar.Int(&c.MaxListSize, env.MaxListSize)
	}
	c.MaxListSize = min(max(c.MaxListSize, 1), MaxListCap)
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "docsort"
	}
	if c.Prefix == "" {
		c.Prefix = "snapshots/"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 50
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.AccountURL == "" {
		return fmt.Errorf("connection_string or account_url required")
	}
	return nil
}
