package main

import (
	"net/http"

	"github.com/JaimeStill/docsort/pkg/handlers"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
	"github.com/JaimeStill/docsort/pkg/module"
)

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// mountHealth registers liveness and readiness endpoints outside any
// module prefix. Readiness reports 503 until every startup hook and tracked
// subsystem is ready.
func mountHealth(router *module.Router, lc *lifecycle.Coordinator, version string) {
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, healthStatus{Status: "ok", Version: version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, healthStatus{Status: "ready"})
	})
}
