// Package similarity scores multi-channel fingerprint similarity and answers
// nearest-neighbor queries over indexed fingerprints.
package similarity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrInvalidFingerprint = errors.New("invalid fingerprint")
	ErrInvalidWeights     = errors.New("invalid similarity weights")
)

// Hash is a perceptual hash, hex-encoded in JSON.
type Hash []byte

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: hash: %w", ErrInvalidFingerprint, err)
	}
	*h = b
	return nil
}

// Fingerprint is the vector and hash subset of a signal retained for
// similarity queries. Every channel is optional.
type Fingerprint struct {
	Hash           Hash      `json:"hash,omitempty"`
	ColorHistogram []float64 `json:"color_histogram,omitempty"`
	EdgeHistogram  []float64 `json:"edge_histogram,omitempty"`
	Embedding      []float64 `json:"embedding,omitempty"`
}

// Empty reports whether no channel is present.
func (f *Fingerprint) Empty() bool {
	return len(f.Hash) == 0 && len(f.ColorHistogram) == 0 &&
		len(f.EdgeHistogram) == 0 && len(f.Embedding) == 0
}

// Validate rejects negative histogram bins and non-finite values.
func (f *Fingerprint) Validate() error {
	for name, hist := range map[string][]float64{
		"color_histogram": f.ColorHistogram,
		"edge_histogram":  f.EdgeHistogram,
	} {
		for i, v := range hist {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: %s[%d] = %v", ErrInvalidFingerprint, name, i, v)
			}
		}
	}
	for i, v := range f.Embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: embedding[%d] = %v", ErrInvalidFingerprint, i, v)
		}
	}
	return nil
}

func (f Fingerprint) Clone() Fingerprint {
	return Fingerprint{
		Hash:           slices.Clone(f.Hash),
		ColorHistogram: slices.Clone(f.ColorHistogram),
		EdgeHistogram:  slices.Clone(f.EdgeHistogram),
		Embedding:      slices.Clone(f.Embedding),
	}
}
