package learning

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
	"github.com/JaimeStill/docsort/pkg/storage"
)

type engine struct {
	cfg      Config
	rule     HeuristicRule
	registry *Registry
	ledger   Ledger
	storage  storage.System
	logger   *slog.Logger
	trigger  chan struct{}

	mu        sync.Mutex
	listeners []func(Snapshot)
	last      *Recomputation
}

// New creates a learning system over ledger. Snapshot archives are read
// from store, which may be storage.Disabled().
func New(cfg Config, ledger Ledger, store storage.System, logger *slog.Logger) System {
	return &engine{
		cfg:      cfg,
		rule:     cfg.Rule(),
		registry: NewRegistry(),
		ledger:   ledger,
		storage:  store,
		logger:   logger.With("system", "learning"),
		trigger:  make(chan struct{}, 1),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.storage, e.logger)
}

func (e *engine) Current() Snapshot {
	return e.registry.Current()
}

func (e *engine) WeightsAt(version int) (*scoring.WeightConfig, bool) {
	return e.registry.WeightsAt(version)
}

func (e *engine) ThresholdsAt(version int) (*scoring.ThresholdConfig, bool) {
	return e.registry.ThresholdsAt(version)
}

func (e *engine) Learn(entry feedback.Entry, count int) (Outcome, error) {
	snap, published, err := e.registry.UpdateWeights(func(w *scoring.WeightConfig) map[scoring.Key]float64 {
		return e.rule.Apply(w, entry.Predicted, entry.CorrectedClass)
	})
	if err != nil {
		return Outcome{Snapshot: snap}, err
	}
	if published {
		e.logger.Debug(
			"weights published",
			"version", snap.Weights.Version(),
			"predicted", entry.Predicted,
			"corrected", entry.CorrectedClass,
		)
		e.publish(snap)
	}

	out := Outcome{Snapshot: snap, Published: published}
	if count > 0 && count%e.cfg.Interval == 0 {
		out.Scheduled = e.schedule()
	}
	return out, nil
}

// schedule queues a recompute. A pending trigger absorbs further requests.
func (e *engine) schedule() bool {
	select {
	case e.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *engine) Recompute(ctx context.Context) (Recomputation, error) {
	if err := ctx.Err(); err != nil {
		return Recomputation{}, err
	}

	entries := e.ledger.Window(e.cfg.Window)

	var (
		report Report
		optErr error
	)
	snap, published, err := e.registry.UpdateThresholds(func(t *scoring.ThresholdConfig) map[scoring.Class]float64 {
		report, optErr = Optimize(entries, t, e.cfg)
		return report.Values
	})
	if err == nil {
		err = optErr
	}

	rc := Recomputation{
		Report:            report,
		Published:         published,
		ThresholdsVersion: snap.Thresholds.Version(),
		At:                time.Now().UTC(),
	}
	if err != nil {
		rc.Error = err.Error()
	}

	e.mu.Lock()
	e.last = &rc
	e.mu.Unlock()

	if published {
		e.logger.Info(
			"thresholds published",
			"version", snap.Thresholds.Version(),
			"feedback", report.Feedback,
			"changed", len(report.Changed),
		)
		e.publish(snap)
	}
	return rc, err
}

func (e *engine) Replace(weights map[scoring.Key]float64, thresholds map[scoring.Class]float64) (Snapshot, error) {
	before := e.registry.Current()
	snap, err := e.registry.Replace(weights, thresholds)
	if err != nil {
		return snap, err
	}
	if snap != before {
		e.logger.Info(
			"configuration replaced",
			"weights_version", snap.Weights.Version(),
			"thresholds_version", snap.Thresholds.Version(),
		)
		e.publish(snap)
	}
	return snap, nil
}

// ResetConfig publishes the built-in defaults as new versions.
func (e *engine) ResetConfig() (Snapshot, error) {
	return e.Replace(scoring.DefaultWeights().Values(), scoring.DefaultThresholds().Values())
}

// ResetHistory clears the feedback ledger. Weights and thresholds are kept.
func (e *engine) ResetHistory() {
	e.ledger.Reset()
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
	e.logger.Info("feedback history reset")
}

func (e *engine) Restore(s Snapshot) error {
	return e.registry.Restore(s)
}

func (e *engine) Stats() Stats {
	snap := e.registry.Current()

	e.mu.Lock()
	last := e.last
	e.mu.Unlock()

	return Stats{
		Stats:             e.ledger.Stats(feedback.DefaultRecent),
		WeightsVersion:    snap.Weights.Version(),
		ThresholdsVersion: snap.Thresholds.Version(),
		Thresholds:        snap.Thresholds.Values(),
		LastRecompute:     last,
	}
}

func (e *engine) OnPublish(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *engine) publish(s Snapshot) {
	e.mu.Lock()
	listeners := make([]func(Snapshot), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Start runs the deferred threshold optimizer until shutdown.
func (e *engine) Start(lc *lifecycle.Coordinator) error {
	e.logger.Info("starting learning system", "interval", e.cfg.Interval)

	lc.Go(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.trigger:
				rc, err := e.Recompute(ctx)
				switch {
				case errors.Is(err, ErrInsufficientData):
					e.logger.Info("threshold recompute skipped", "feedback", rc.Feedback)
				case err != nil:
					e.logger.Error("threshold recompute failed", "error", err)
				}
			}
		}
	})

	return nil
}
