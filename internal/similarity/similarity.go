package similarity

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/viterin/vek"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

// Weights are the per-channel ensemble weights. They must sum to 1 within
// a small tolerance.
type Weights struct {
	Hash      float64 `toml:"hash" json:"hash"`
	Color     float64 `toml:"color" json:"color"`
	Edge      float64 `toml:"edge" json:"edge"`
	Embedding float64 `toml:"embedding" json:"embedding"`
}

// WeightsEnv maps Weights fields to environment variable names.
type WeightsEnv struct {
	Hash      string
	Color     string
	Edge      string
	Embedding string
}

func DefaultWeights() Weights {
	return Weights{Hash: 0.2, Color: 0.2, Edge: 0.2, Embedding: 0.4}
}

// Finalize applies defaults when no weight is set, environment variable
// overrides, and validation.
func (w *Weights) Finalize(env *WeightsEnv) error {
	if *w == (Weights{}) {
		*w = DefaultWeights()
	}
	if env != nil {
		envvar.Float(&w.Hash, env.Hash)
		envvar.Float(&w.Color, env.Color)
		envvar.Float(&w.Edge, env.Edge)
		envvar.Float(&w.Embedding, env.Embedding)
	}
	return w.Validate()
}

// Merge replaces all weights when the overlay sets any of them.
func (w *Weights) Merge(overlay *Weights) {
	if *overlay != (Weights{}) {
		*w = *overlay
	}
}

func (w Weights) Validate() error {
	sum := 0.0
	for _, v := range []float64{w.Hash, w.Color, w.Edge, w.Embedding} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: weights must be non-negative", ErrInvalidWeights)
		}
		sum += v
	}
	if math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("%w: weights sum to %.3f, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Similarity returns the weighted ensemble similarity of a and b in [0,1].
// Channels missing on either side are excluded and the remaining weights
// renormalized. Pairs without a shared channel score 0.
func Similarity(a, b *Fingerprint, w Weights) float64 {
	var total, weight float64

	add := func(sim float64, ok bool, cw float64) {
		if ok && cw > 0 {
			total += sim * cw
			weight += cw
		}
	}

	s, ok := hashSimilarity(a.Hash, b.Hash)
	add(s, ok, w.Hash)
	s, ok = histogramSimilarity(a.ColorHistogram, b.ColorHistogram)
	add(s, ok, w.Color)
	s, ok = histogramSimilarity(a.EdgeHistogram, b.EdgeHistogram)
	add(s, ok, w.Edge)
	s, ok = embeddingSimilarity(a.Embedding, b.Embedding)
	add(s, ok, w.Embedding)

	if weight == 0 {
		return 0
	}
	return clamp01(total / weight)
}

func hashSimilarity(a, b Hash) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	distance := 0
	for i := range a {
		distance += bits.OnesCount8(a[i] ^ b[i])
	}
	return 1 - float64(distance)/float64(8*len(a)), true
}

// histogramSimilarity maps the chi-square distance onto (0,1].
func histogramSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var d float64
	for i := range a {
		sum := a[i] + b[i]
		if sum > 0 {
			diff := a[i] - b[i]
			d += diff * diff / sum
		}
	}
	return 1 / (1 + d), true
}

// embeddingSimilarity rescales cosine similarity from [-1,1] to [0,1].
func embeddingSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	aa, bb := vek.Dot(a, a), vek.Dot(b, b)
	if aa == 0 || bb == 0 {
		return 0, false
	}
	// A single square root keeps cos(X, X) exactly 1.
	cos := vek.Dot(a, b) / math.Sqrt(aa*bb)
	return clamp01((cos + 1) / 2), true
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
