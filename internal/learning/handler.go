package learning

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/handlers"
	"github.com/JaimeStill/docsort/pkg/routes"
	"github.com/JaimeStill/docsort/pkg/storage"
)

// Handler provides HTTP endpoints for configuration learning.
type Handler struct {
	sys     System
	storage storage.System
	logger  *slog.Logger
}

// ReplaceCommand carries replacement weights and thresholds. An omitted
// side keeps its current version.
type ReplaceCommand struct {
	Weights    map[string]map[string]float64 `json:"weights,omitempty"`
	Thresholds map[scoring.Class]float64     `json:"thresholds,omitempty"`
}

func NewHandler(sys System, store storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		storage: store,
		logger:  logger.With("handler", "learning"),
	}
}

// Routes returns the route group definition for learning endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/learning",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/config", Handler: h.Config},
			{Method: "PUT", Pattern: "/config", Handler: h.Replace},
			{Method: "POST", Pattern: "/config/reset", Handler: h.ResetConfig},
			{Method: "POST", Pattern: "/thresholds/recompute", Handler: h.Recompute},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "POST", Pattern: "/reset", Handler: h.Reset},
		},
		Children: []routes.Group{
			{
				Prefix: "/snapshots",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Snapshots},
					{Method: "GET", Pattern: "/{key...}", Handler: h.Snapshot},
				},
			},
		},
	}
}

// Config returns the weights and thresholds currently in effect.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Current())
}

// Replace validates and publishes a ReplaceCommand. Nothing is published
// when either side is invalid.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[ReplaceCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var weights map[scoring.Key]float64
	if cmd.Weights != nil {
		weights, err = scoring.WeightValues(cmd.Weights)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	snap, err := h.sys.Replace(weights, cmd.Thresholds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// ResetConfig publishes the built-in defaults as new versions.
func (h *Handler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sys.ResetConfig()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Recompute runs the threshold optimizer synchronously.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	rc, err := h.sys.Recompute(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rc)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Stats())
}

// Reset clears feedback history and keeps the learned configuration.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sys.ResetHistory()
	w.WriteHeader(http.StatusNoContent)
}

// Snapshots lists archived configuration snapshots.
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	objects, err := h.storage.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, objects)
}

// Snapshot returns one archived snapshot document.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.storage.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
