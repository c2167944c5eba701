package config

import (
	"fmt"

	"github.com/JaimeStill/docsort/internal/store"
	"github.com/JaimeStill/docsort/pkg/envvar"
)

const (
	EnvStoreBackend = "DOCSORT_STORE_BACKEND"
	EnvStoreArchive = "DOCSORT_STORE_ARCHIVE"
	EnvStoreAsync   = "DOCSORT_STORE_ASYNC"
	EnvStoreBuffer  = "DOCSORT_STORE_BUFFER"
)

// StoreConfig selects the persistence backend and its decorators.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Archive bool   `toml:"archive"`
	Async   bool   `toml:"async"`
	Buffer  int    `toml:"buffer"`
}

// BackendKind returns the parsed backend. Valid after Finalize.
func (c *StoreConfig) BackendKind() store.Backend {
	b, _ := store.ParseBackend(c.Backend)
	return b
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *StoreConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Archive {
		c.Archive = true
	}
	if overlay.Async {
		c.Async = true
	}
	if overlay.Buffer != 0 {
		c.Buffer = overlay.Buffer
	}
}

func (c *StoreConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = string(store.Memory)
	}
	if c.Buffer == 0 {
		c.Buffer = 256
	}
}

func (c *StoreConfig) loadEnv() {
	envvar.String(&c.Backend, EnvStoreBackend)
	envvar.Bool(&c.Archive, EnvStoreArchive)
	envvar.Bool(&c.Async, EnvStoreAsync)
	envvar.Int(&c.Buffer, EnvStoreBuffer)
}

func (c *StoreConfig) validate() error {
	if _, err := store.ParseBackend(c.Backend); err != nil {
		return err
	}
	if c.Buffer < 1 {
		return fmt.Errorf("buffer must be positive: got %d", c.Buffer)
	}
	return nil
}
