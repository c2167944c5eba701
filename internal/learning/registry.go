package learning

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/JaimeStill/docsort/internal/scoring"
)

// Snapshot pairs the weight and threshold versions in effect at one moment.
type Snapshot struct {
	Weights    *scoring.WeightConfig    `json:"weights"`
	Thresholds *scoring.ThresholdConfig `json:"thresholds"`
}

// Registry publishes configuration versions. Readers load the current
// snapshot without locking; writers serialize, validate the complete
// candidate and swap it in. Every published version stays resolvable.
type Registry struct {
	current atomic.Pointer[Snapshot]

	mu         sync.Mutex
	weights    map[int]*scoring.WeightConfig
	thresholds map[int]*scoring.ThresholdConfig
}

// NewRegistry starts from the default configuration.
func NewRegistry() *Registry {
	r := &Registry{
		weights:    make(map[int]*scoring.WeightConfig),
		thresholds: make(map[int]*scoring.ThresholdConfig),
	}
	r.install(Snapshot{Weights: scoring.DefaultWeights(), Thresholds: scoring.DefaultThresholds()})
	return r
}

func (r *Registry) Current() Snapshot {
	return *r.current.Load()
}

func (r *Registry) WeightsAt(version int) (*scoring.WeightConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.weights[version]
	return w, ok
}

func (r *Registry) ThresholdsAt(version int) (*scoring.ThresholdConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.thresholds[version]
	return t, ok
}

// UpdateWeights derives successor weights from the current version.
// Nothing is published when fn returns an error, the candidate fails
// validation, or the values are unchanged.
func (r *Registry) UpdateWeights(fn func(*scoring.WeightConfig) map[scoring.Key]float64) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.current.Load()
	next, err := cur.Weights.Next(fn(cur.Weights))
	if err != nil {
		return cur, false, err
	}
	if next.SameValues(cur.Weights) {
		return cur, false, nil
	}

	return r.install(Snapshot{Weights: next, Thresholds: cur.Thresholds}), true, nil
}

// UpdateThresholds derives successor thresholds from the current version.
func (r *Registry) UpdateThresholds(fn func(*scoring.ThresholdConfig) map[scoring.Class]float64) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.current.Load()
	next, err := cur.Thresholds.Next(fn(cur.Thresholds))
	if err != nil {
		return cur, false, err
	}
	if next.SameValues(cur.Thresholds) {
		return cur, false, nil
	}

	return r.install(Snapshot{Weights: cur.Weights, Thresholds: next}), true, nil
}

// Replace publishes new weight and threshold values together. A nil map,
// or values equal to the current ones, keep the current side. Both sides
// are validated before either is published.
func (r *Registry) Replace(weights map[scoring.Key]float64, thresholds map[scoring.Class]float64) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.current.Load()
	next := cur

	if weights != nil {
		w, err := cur.Weights.Next(weights)
		if err != nil {
			return cur, err
		}
		if !w.SameValues(cur.Weights) {
			next.Weights = w
		}
	}
	if thresholds != nil {
		t, err := cur.Thresholds.Next(thresholds)
		if err != nil {
			return cur, err
		}
		if !t.SameValues(cur.Thresholds) {
			next.Thresholds = t
		}
	}

	if next == cur {
		return cur, nil
	}
	return r.install(next), nil
}

// Restore installs a persisted snapshot as current. Snapshots older than
// the current versions are rejected so versions never move backwards.
func (r *Registry) Restore(s Snapshot) error {
	if s.Weights == nil || s.Thresholds == nil {
		return fmt.Errorf("%w: incomplete snapshot", scoring.ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.current.Load()
	if s.Weights.Version() < cur.Weights.Version() || s.Thresholds.Version() < cur.Thresholds.Version() {
		return fmt.Errorf(
			"%w: snapshot w%d/t%d is older than w%d/t%d",
			scoring.ErrInvalidConfig,
			s.Weights.Version(), s.Thresholds.Version(),
			cur.Weights.Version(), cur.Thresholds.Version(),
		)
	}

	r.install(s)
	return nil
}

// install must be called with mu held, or before r is shared.
func (r *Registry) install(s Snapshot) Snapshot {
	r.weights[s.Weights.Version()] = s.Weights
	r.thresholds[s.Thresholds.Version()] = s.Thresholds
	r.current.Store(&s)
	return s
}
