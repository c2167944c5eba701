package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/store"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080

[database]
name = "docsort"
user = "docsort"
max_open_conns = 25

[store]
backend = "postgres"
async = true
buffer = 64

[api]
base_path = "/api"
max_body_size = "2MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[logging]
level = "debug"
format = "json"

[learning]
threshold_interval = 20
weight_ceiling = 8.0

[similarity]
default_limit = 3

[similarity.weights]
hash = 0.25
color = 0.25
edge = 0.25
embedding = 0.25

[scoring]
min_text_length = 400
`

const overlayConfig = `
[server]
port = 9090

[learning]
threshold_percentile = 10.0
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("max_open_conns: got %d, want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Store.BackendKind() != store.Postgres || !cfg.Store.Async || cfg.Store.Buffer != 64 {
		t.Errorf("store: got %+v", cfg.Store)
	}
	if cfg.API.MaxBodySizeBytes() != 2<<20 {
		t.Errorf("max body size: got %d, want %d", cfg.API.MaxBodySizeBytes(), 2<<20)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default page size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug || !cfg.Logging.JSON() {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if cfg.Learning.Interval != 20 || cfg.Learning.WeightCeiling != 8.0 {
		t.Errorf("learning: got %+v", cfg.Learning)
	}
	if cfg.Learning.Percentile != 25 {
		t.Errorf("percentile default: got %v, want 25", cfg.Learning.Percentile)
	}
	if cfg.Similarity.DefaultLimit != 3 || cfg.Similarity.Weights.Embedding != 0.25 {
		t.Errorf("similarity: got %+v", cfg.Similarity)
	}
	if cfg.Scoring.MinTextLength != 400 || cfg.Scoring.DocTextDivisor != 300 {
		t.Errorf("scoring: got %+v", cfg.Scoring)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Store.BackendKind() != store.Memory {
		t.Errorf("backend: got %q, want memory", cfg.Store.Backend)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path: got %q, want /api", cfg.API.BasePath)
	}
	if cfg.Logging.SlogLevel() != slog.LevelInfo || cfg.Logging.JSON() {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if cfg.Storage.Enabled {
		t.Error("storage should be disabled by default")
	}
	if cfg.Learning.Interval != 50 {
		t.Errorf("threshold interval: got %d, want 50", cfg.Learning.Interval)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)
	t.Setenv(config.EnvDocsortEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env: got %q, want staging", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Learning.Percentile != 10 {
		t.Errorf("percentile: got %v, want 10", cfg.Learning.Percentile)
	}
	if cfg.Learning.Interval != 20 {
		t.Errorf("interval should survive overlay: got %d", cfg.Learning.Interval)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv("DOCSORT_SERVER_PORT", "7070")
	t.Setenv("DOCSORT_DB_HOST", "db.internal")
	t.Setenv(config.EnvStoreBackend, "memory")
	t.Setenv(config.EnvLoggingLevel, "warn")
	t.Setenv("DOCSORT_LEARNING_MIN_FEEDBACK", "4")
	t.Setenv("DOCSORT_SIMILARITY_MAX_LIMIT", "9")
	t.Setenv("DOCSORT_API_MAX_BODY_SIZE", "512KB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server port: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host: got %q", cfg.Database.Host)
	}
	if cfg.Store.BackendKind() != store.Memory {
		t.Errorf("backend: got %q, want memory", cfg.Store.Backend)
	}
	if cfg.Logging.SlogLevel() != slog.LevelWarn {
		t.Errorf("log level: got %v, want warn", cfg.Logging.SlogLevel())
	}
	if cfg.Learning.MinFeedback != 4 {
		t.Errorf("min feedback: got %d, want 4", cfg.Learning.MinFeedback)
	}
	if cfg.Similarity.MaxLimit != 9 {
		t.Errorf("max limit: got %d, want 9", cfg.Similarity.MaxLimit)
	}
	if cfg.API.MaxBodySizeBytes() != 512<<10 {
		t.Errorf("max body size: got %d", cfg.API.MaxBodySizeBytes())
	}
}

func TestFinalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"bad shutdown timeout", `shutdown_timeout = "soon"`, "shutdown_timeout"},
		{"unknown backend", "[store]\nbackend = \"sqlite\"", "store"},
		{"bad log format", "[logging]\nformat = \"xml\"", "logging"},
		{"bad body size", "[api]\nmax_body_size = \"lots\"", "max_body_size"},
		{"nested base path", "[api]\nbase_path = \"/api/v1\"", "base_path"},
		{"negative idle timeout", "[server]\nidle_timeout = \"-1s\"", "idle_timeout"},
		{"bad percentile", "[learning]\nthreshold_percentile = 150.0", "threshold_percentile"},
		{"limit mismatch", "[similarity]\ndefault_limit = 80", "default_limit"},
		{"archive without storage", "[store]\narchive = true", "archive requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tt.toml))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			err = cfg.Finalize()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := config.Parse([]byte("[server\nport = ")); err == nil {
		t.Error("expected parse error")
	}
}
