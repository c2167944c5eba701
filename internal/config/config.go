// Package config loads the docsort service configuration from config.toml,
// an optional environment overlay and DOCSORT_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/internal/similarity"
	"github.com/JaimeStill/docsort/pkg/database"
	"github.com/JaimeStill/docsort/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDocsortEnv             = "DOCSORT_ENV"
	EnvDocsortShutdownTimeout = "DOCSORT_SHUTDOWN_TIMEOUT"
	EnvDocsortVersion         = "DOCSORT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "DOCSORT_DB_HOST",
	Port:            "DOCSORT_DB_PORT",
	Name:            "DOCSORT_DB_NAME",
	User:            "DOCSORT_DB_USER",
	Password:        "DOCSORT_DB_PASSWORD",
	SSLMode:         "DOCSORT_DB_SSL_MODE",
	MaxOpenConns:    "DOCSORT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DOCSORT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DOCSORT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DOCSORT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "DOCSORT_STORAGE_ENABLED",
	ContainerName:    "DOCSORT_STORAGE_CONTAINER_NAME",
	ConnectionString: "DOCSORT_STORAGE_CONNECTION_STRING",
	AccountURL:       "DOCSORT_STORAGE_ACCOUNT_URL",
	Prefix:           "DOCSORT_STORAGE_PREFIX",
	MaxListSize:      "DOCSORT_STORAGE_MAX_LIST_SIZE",
}

var learningEnv = &learning.Env{
	Reinforce:     "DOCSORT_LEARNING_REINFORCE_FACTOR",
	Penalty:       "DOCSORT_LEARNING_PENALTY_FACTOR",
	Reward:        "DOCSORT_LEARNING_REWARD_FACTOR",
	WeightFloor:   "DOCSORT_LEARNING_WEIGHT_FLOOR",
	WeightCeiling: "DOCSORT_LEARNING_WEIGHT_CEILING",
	Interval:      "DOCSORT_LEARNING_THRESHOLD_INTERVAL",
	Percentile:    "DOCSORT_LEARNING_THRESHOLD_PERCENTILE",
	MinSamples:    "DOCSORT_LEARNING_MIN_SAMPLES",
	MinFeedback:   "DOCSORT_LEARNING_MIN_FEEDBACK",
	Margin:        "DOCSORT_LEARNING_SEPARATION_MARGIN",
	MinChange:     "DOCSORT_LEARNING_MIN_CHANGE",
	Window:        "DOCSORT_LEARNING_WINDOW",
}

var similarityEnv = &similarity.Env{
	Weights: &similarity.WeightsEnv{
		Hash:      "DOCSORT_SIMILARITY_HASH_WEIGHT",
		Color:     "DOCSORT_SIMILARITY_COLOR_WEIGHT",
		Edge:      "DOCSORT_SIMILARITY_EDGE_WEIGHT",
		Embedding: "DOCSORT_SIMILARITY_EMBEDDING_WEIGHT",
	},
	CacheSize:    "DOCSORT_SIMILARITY_CACHE_SIZE",
	DefaultLimit: "DOCSORT_SIMILARITY_DEFAULT_LIMIT",
	MaxLimit:     "DOCSORT_SIMILARITY_MAX_LIMIT",
}

var scoringEnv = &scoring.ParamsEnv{
	PrimaryKeywordBonus: "DOCSORT_SCORING_PRIMARY_KEYWORD_BONUS",
	NoKeywordBonus:      "DOCSORT_SCORING_NO_KEYWORD_BONUS",
	NoDigitBonus:        "DOCSORT_SCORING_NO_DIGIT_BONUS",
	MinTextLength:       "DOCSORT_SCORING_MIN_TEXT_LENGTH",
	DocTextDivisor:      "DOCSORT_SCORING_DOC_TEXT_DIVISOR",
	LowTextThreshold:    "DOCSORT_SCORING_LOW_TEXT_THRESHOLD",
}

// Config is the root configuration for the docsort service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Store           StoreConfig       `toml:"store"`
	API             APIConfig         `toml:"api"`
	Logging         LoggingConfig     `toml:"logging"`
	Learning        learning.Config   `toml:"learning"`
	Similarity      similarity.Config `toml:"similarity"`
	Scoring         scoring.Params    `toml:"scoring"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the DOCSORT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocsortEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes a TOML document into an unfinalized Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Store.Merge(&overlay.Store)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Learning.Merge(&overlay.Learning)
	c.Similarity.Merge(&overlay.Similarity)
	c.Scoring.Merge(&overlay.Scoring)
}

// Finalize applies defaults, environment overrides and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Store.Finalize(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Learning.Finalize(learningEnv); err != nil {
		return fmt.Errorf("learning: %w", err)
	}
	if err := c.Similarity.Finalize(similarityEnv); err != nil {
		return fmt.Errorf("similarity: %w", err)
	}
	if err := c.Scoring.Finalize(scoringEnv); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Store.Archive && !c.Storage.Enabled {
		return fmt.Errorf("store: archive requires storage.enabled")
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDocsortShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDocsortVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvDocsortEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
