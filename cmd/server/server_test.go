package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/infrastructure"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("version = \"9.9.9\""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestHealthEndpoints(t *testing.T) {
	cfg := testConfig(t)
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })

	router, err := newRouter(cfg, infra)
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	get := func(path string) (*httptest.ResponseRecorder, map[string]string) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		var body map[string]string
		json.NewDecoder(rec.Body).Decode(&body)
		return rec, body
	}

	rec, body := get("/healthz")
	if rec.Code != http.StatusOK || body["version"] != "9.9.9" {
		t.Errorf("healthz = %d %v", rec.Code, body)
	}

	if rec, _ := get("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup = %d, want 503", rec.Code)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}

	if rec, body := get("/readyz"); rec.Code != http.StatusOK || body["status"] != "ready" {
		t.Errorf("readyz after startup = %d %v", rec.Code, body)
	}

	if rec, _ := get("/api/learning/config"); rec.Code != http.StatusOK {
		t.Errorf("api mount = %d, want 200", rec.Code)
	}
}
