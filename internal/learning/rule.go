// Package learning adapts the scoring configuration from user feedback.
// Weights move through a fixed multiplicative rule on every accepted
// correction; thresholds are periodically re-derived from score
// percentiles. Every change is published as a new immutable version
// through the Registry.
package learning

import (
	"github.com/JaimeStill/docsort/internal/scoring"
)

// HeuristicRule is the multiplicative weight update applied per feedback
// event. It is a fixed heuristic, not an optimizer: it does not minimize a
// loss and makes no convergence guarantee.
type HeuristicRule struct {
	Reinforce float64
	Penalty   float64
	Reward    float64
	Floor     float64
	Ceiling   float64
}

// Apply returns the successor weight values for one feedback event.
// A confirmed prediction scales every weight of the predicted class by
// 1+Reinforce. A correction scales the predicted class by 1+Penalty and
// the corrected class by 1+Reward. Weights of other classes are unchanged.
func (r HeuristicRule) Apply(w *scoring.WeightConfig, predicted, corrected scoring.Class) map[scoring.Key]float64 {
	values := w.Values()

	if predicted == corrected {
		r.scale(values, predicted, 1+r.Reinforce)
		return values
	}

	r.scale(values, predicted, 1+r.Penalty)
	r.scale(values, corrected, 1+r.Reward)
	return values
}

func (r HeuristicRule) scale(values map[scoring.Key]float64, c scoring.Class, factor float64) {
	for _, f := range scoring.Features(c) {
		k := scoring.Key{Class: c, Feature: f}
		old := values[k]
		v := old * factor

		switch {
		case factor < 1 && v < r.Floor:
			// a penalty never raises a weight already below the floor
			v = min(r.Floor, old)
		case factor > 1 && r.Ceiling > 0 && v > r.Ceiling:
			v = max(r.Ceiling, old)
		}
		values[k] = v
	}
}
