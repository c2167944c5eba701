package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/JaimeStill/docsort/internal/similarity"
)

// KeywordMatch is a keyword matched in the OCR text.
type KeywordMatch struct {
	Keyword  string `json:"keyword"`
	Position int    `json:"position"`
	Class    Class  `json:"class"`
	Primary  bool   `json:"primary,omitempty"`
}

// Signal is the bundle of precomputed per-image signals consumed by Compute.
// Nil optional fields are neutral and contribute nothing.
type Signal struct {
	TextLength  int          `json:"text_length"`
	WordCount   int          `json:"word_count"`
	LineCount   int          `json:"line_count"`
	KeywordHits []KeywordMatch `json:"keyword_hits,omitempty"`

	DigitRatio         *float64 `json:"digit_ratio,omitempty"`
	EdgeDensity        *float64 `json:"edge_density,omitempty"`
	GeometryConfidence *float64 `json:"geometry_confidence,omitempty"`
	ColorUniformity    *float64 `json:"color_uniformity,omitempty"`
	BorderScore        *float64 `json:"border_score,omitempty"`

	VisionLabel      string   `json:"vision_label,omitempty"`
	VisionConfidence *float64 `json:"vision_confidence,omitempty"`

	Fingerprint *similarity.Fingerprint `json:"fingerprint,omitempty"`
}

var visionLabels = map[string]Class{
	"arbeitsbericht":    Arbeitsbericht,
	"work report":       Arbeitsbericht,
	"work_report":       Arbeitsbericht,
	"device type plate": Typeplate,
	"type plate":        Typeplate,
	"typeplate":         Typeplate,
	"type_plate":        Typeplate,
	"document":          Document,
	"photo":             Photo,
}

// VisionClass maps the vision-language label onto a class.
func (s *Signal) VisionClass() (Class, bool) {
	c, ok := visionLabels[strings.ToLower(strings.TrimSpace(s.VisionLabel))]
	return c, ok
}

// Validate rejects signals that cannot be scored.
func (s *Signal) Validate() error {
	if s.TextLength < 0 || s.WordCount < 0 || s.LineCount < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidSignal)
	}

	for i, hit := range s.KeywordHits {
		if !hit.Class.Valid() {
			return fmt.Errorf("%w: keyword_hits[%d] has invalid class %q", ErrInvalidSignal, i, hit.Class)
		}
		if hit.Position < 0 {
			return fmt.Errorf("%w: keyword_hits[%d] position must be non-negative", ErrInvalidSignal, i)
		}
	}

	unit := []struct {
		name string
		v    *float64
	}{
		{"digit_ratio", s.DigitRatio},
		{"edge_density", s.EdgeDensity},
		{"geometry_confidence", s.GeometryConfidence},
		{"color_uniformity", s.ColorUniformity},
		{"border_score", s.BorderScore},
		{"vision_confidence", s.VisionConfidence},
	}
	for _, u := range unit {
		if u.v == nil {
			continue
		}
		if math.IsNaN(*u.v) || *u.v < 0 || *u.v > 1 {
			return fmt.Errorf("%w: %s = %v must be within [0,1]", ErrInvalidSignal, u.name, *u.v)
		}
	}

	if s.Fingerprint != nil {
		if err := s.Fingerprint.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignal, err)
		}
	}
	return nil
}

// Clone returns a deep copy so the stored snapshot cannot be changed through
// the caller's pointers.
func (s Signal) Clone() Signal {
	out := s
	out.KeywordHits = append([]KeywordMatch(nil), s.KeywordHits...)
	out.DigitRatio = clonePtr(s.DigitRatio)
	out.EdgeDensity = clonePtr(s.EdgeDensity)
	out.GeometryConfidence = clonePtr(s.GeometryConfidence)
	out.ColorUniformity = clonePtr(s.ColorUniformity)
	out.BorderScore = clonePtr(s.BorderScore)
	out.VisionConfidence = clonePtr(s.VisionConfidence)
	if s.Fingerprint != nil {
		fp := s.Fingerprint.Clone()
		out.Fingerprint = &fp
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
