package learning

import (
	"context"
	"time"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

// Ledger is the feedback history the learning system reads and resets.
type Ledger interface {
	Window(n int) []feedback.Entry
	Len() int
	Stats(recent int) feedback.Stats
	Reset()
}

// Outcome reports the effect of one feedback event.
type Outcome struct {
	Snapshot  Snapshot
	Published bool
	Scheduled bool
}

// Recomputation records one threshold optimizer run.
type Recomputation struct {
	Report
	Published         bool      `json:"published"`
	ThresholdsVersion int       `json:"thresholds_version"`
	At                time.Time `json:"at"`
	Error             string    `json:"error,omitempty"`
}

// Stats extends ledger statistics with the configuration in effect.
type Stats struct {
	feedback.Stats
	WeightsVersion    int                       `json:"weights_version"`
	ThresholdsVersion int                       `json:"thresholds_version"`
	Thresholds        map[scoring.Class]float64 `json:"current_thresholds"`
	LastRecompute     *Recomputation            `json:"last_recompute,omitempty"`
}

// System defines the public contract for configuration learning.
type System interface {
	Handler() *Handler

	Current() Snapshot
	WeightsAt(version int) (*scoring.WeightConfig, bool)
	ThresholdsAt(version int) (*scoring.ThresholdConfig, bool)

	// Learn applies the weight rule for an appended entry. count is the
	// ledger length after the append; every Interval-th entry schedules a
	// threshold recompute without waiting for it.
	Learn(entry feedback.Entry, count int) (Outcome, error)
	Recompute(ctx context.Context) (Recomputation, error)

	Replace(weights map[scoring.Key]float64, thresholds map[scoring.Class]float64) (Snapshot, error)
	ResetConfig() (Snapshot, error)
	ResetHistory()
	Restore(s Snapshot) error

	Stats() Stats

	// OnPublish registers fn to run after each newly published snapshot.
	OnPublish(fn func(Snapshot))
	Start(lc *lifecycle.Coordinator) error
}
