package learning

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/scoring"
)

// Change describes a threshold moved by the optimizer.
type Change struct {
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Samples  int     `json:"samples"`
	Mean     float64 `json:"mean"`
}

// Report is the outcome of one optimizer run. Skipped holds the reason a
// class kept its threshold.
type Report struct {
	Feedback int                       `json:"feedback"`
	Changed  map[scoring.Class]Change  `json:"changed"`
	Skipped  map[scoring.Class]string  `json:"skipped"`
	Values   map[scoring.Class]float64 `json:"-"`
}

// Optimize derives threshold candidates from the feedback window.
// It returns ErrInsufficientData, with Values equal to current, when the window holds
// fewer than MinFeedback entries. Classes with fewer than MinSamples
// examples, or none at all, keep their current threshold and are listed
// in Skipped.
func Optimize(entries []feedback.Entry, current *scoring.ThresholdConfig, cfg Config) (Report, error) {
	report := Report{
		Feedback: len(entries),
		Changed:  make(map[scoring.Class]Change),
		Skipped:  make(map[scoring.Class]string),
		Values:   current.Values(),
	}

	if len(entries) < cfg.MinFeedback {
		return report, fmt.Errorf(
			"%w: %d feedback entries, %d required",
			ErrInsufficientData, len(entries), cfg.MinFeedback,
		)
	}

	for _, c := range scoring.Classes {
		samples, incorrect := partition(entries, c)
		if len(samples) == 0 || len(samples) < cfg.MinSamples {
			report.Skipped[c] = fmt.Sprintf(
				"%v: %d samples, %d required",
				ErrInsufficientData, len(samples), cfg.MinSamples,
			)
			continue
		}

		candidate := candidateThreshold(samples, incorrect, cfg)
		old := current.Get(c)
		if math.Abs(candidate-old)/max(old, 0.1) <= cfg.MinChange {
			report.Skipped[c] = "below minimum change"
			continue
		}

		report.Values[c] = candidate
		report.Changed[c] = Change{
			Previous: old,
			Current:  candidate,
			Samples:  len(samples),
			Mean:     stat.Mean(samples, nil),
		}
	}

	return report, nil
}

// partition returns the sorted class-c scores of entries corrected to c,
// and the class-c scores of entries wrongly predicted as c.
func partition(entries []feedback.Entry, c scoring.Class) (samples, incorrect []float64) {
	for _, e := range entries {
		score := e.Scores.Get(c)
		if e.CorrectedClass == c {
			samples = append(samples, score)
		} else if e.Predicted == c {
			incorrect = append(incorrect, score)
		}
	}
	slices.Sort(samples)
	return samples, incorrect
}

// candidateThreshold expects samples sorted and non-empty.
func candidateThreshold(samples, incorrect []float64, cfg Config) float64 {
	candidate := percentile(samples, cfg.Percentile)
	if len(incorrect) == 0 {
		return candidate
	}

	worst := slices.Max(incorrect)
	if worst < candidate {
		return candidate
	}

	return min(worst+cfg.Margin, percentile(samples, 50))
}

// percentile linearly interpolates between the closest ranks of sorted,
// placing rank (n-1)*p/100. p is clamped to [0, 100].
func percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * min(max(p, 0), 100) / 100
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
