package config

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/docsort/pkg/envvar"
	"github.com/JaimeStill/docsort/pkg/formatting"
	"github.com/JaimeStill/docsort/pkg/middleware"
	"github.com/JaimeStill/docsort/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOCSORT_CORS_ENABLED",
	Origins:          "DOCSORT_CORS_ORIGINS",
	AllowedMethods:   "DOCSORT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOCSORT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOCSORT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOCSORT_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DOCSORT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DOCSORT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds the API mount point, the request body limit, CORS and
// pagination.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`

	maxBody int64
}

const defaultMaxBody = 1 << 20

// MaxBodySizeBytes returns the parsed MaxBodySize, or 1MB before Finalize.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	if c.maxBody <= 0 {
		return defaultMaxBody
	}
	return c.maxBody
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	envvar.String(&c.BasePath, "DOCSORT_API_BASE_PATH")
	envvar.String(&c.MaxBodySize, "DOCSORT_API_MAX_BODY_SIZE")

	if c.BasePath == "/" || !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("invalid base_path %q: want a single segment like /api", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_body_size: %q must be positive", c.MaxBodySize)
	}
	c.maxBody = size

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

