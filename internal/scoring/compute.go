package scoring

import (
	"fmt"
	"math"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

// Scores holds one non-negative score per class.
type Scores struct {
	AR    float64 `json:"AR"`
	TP    float64 `json:"TP"`
	DOC   float64 `json:"DOC"`
	PHOTO float64 `json:"PHOTO"`
}

// Get returns the score for c.
func (s Scores) Get(c Class) float64 {
	switch c {
	case Arbeitsbericht:
		return s.AR
	case Typeplate:
		return s.TP
	case Document:
		return s.DOC
	case Photo:
		return s.PHOTO
	}
	return 0
}

// Params are the fixed, non-learned shape constants of the score formulas.
type Params struct {
	PrimaryKeywordBonus float64 `toml:"primary_keyword_bonus"`
	NoKeywordBonus      float64 `toml:"no_keyword_bonus"`
	NoDigitBonus        float64 `toml:"no_digit_bonus"`
	MinTextLength       int     `toml:"min_text_length"`
	DocTextDivisor      float64 `toml:"doc_text_divisor"`
	LowTextThreshold    int     `toml:"low_text_threshold"`
}

// ParamsEnv maps Params fields to environment variable names.
type ParamsEnv struct {
	PrimaryKeywordBonus string
	NoKeywordBonus      string
	NoDigitBonus        string
	MinTextLength       string
	DocTextDivisor      string
	LowTextThreshold    string
}

func DefaultParams() Params {
	p := Params{}
	p.loadDefaults()
	return p
}

// Finalize applies defaults, environment variable overrides, and validation.
func (p *Params) Finalize(env *ParamsEnv) error {
	p.loadDefaults()
	if env != nil {
		envvar.Float(&p.PrimaryKeywordBonus, env.PrimaryKeywordBonus)
		envvar.Float(&p.NoKeywordBonus, env.NoKeywordBonus)
		envvar.Float(&p.NoDigitBonus, env.NoDigitBonus)
		envvar.Int(&p.MinTextLength, env.MinTextLength)
		envvar.Float(&p.DocTextDivisor, env.DocTextDivisor)
		envvar.Int(&p.LowTextThreshold, env.LowTextThreshold)
	}
	return p.validate()
}

// Merge overwrites non-zero fields from overlay.
func (p *Params) Merge(overlay *Params) {
	if overlay.PrimaryKeywordBonus != 0 {
		p.PrimaryKeywordBonus = overlay.PrimaryKeywordBonus
	}
	if overlay.NoKeywordBonus != 0 {
		p.NoKeywordBonus = overlay.NoKeywordBonus
	}
	if overlay.NoDigitBonus != 0 {
		p.NoDigitBonus = overlay.NoDigitBonus
	}
	if overlay.MinTextLength != 0 {
		p.MinTextLength = overlay.MinTextLength
	}
	if overlay.DocTextDivisor != 0 {
		p.DocTextDivisor = overlay.DocTextDivisor
	}
	if overlay.LowTextThreshold != 0 {
		p.LowTextThreshold = overlay.LowTextThreshold
	}
}

func (p *Params) loadDefaults() {
	if p.PrimaryKeywordBonus == 0 {
		p.PrimaryKeywordBonus = 5.0
	}
	if p.NoKeywordBonus == 0 {
		p.NoKeywordBonus = 1.0
	}
	if p.NoDigitBonus == 0 {
		p.NoDigitBonus = 1.0
	}
	if p.MinTextLength == 0 {
		p.MinTextLength = 500
	}
	if p.DocTextDivisor == 0 {
		p.DocTextDivisor = 300
	}
	if p.LowTextThreshold == 0 {
		p.LowTextThreshold = 20
	}
}

func (p *Params) validate() error {
	for name, v := range map[string]float64{
		"primary_keyword_bonus": p.PrimaryKeywordBonus,
		"no_keyword_bonus":      p.NoKeywordBonus,
		"no_digit_bonus":        p.NoDigitBonus,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s must be finite and non-negative", name)
		}
	}
	if p.DocTextDivisor <= 0 || math.IsInf(p.DocTextDivisor, 0) {
		return fmt.Errorf("doc_text_divisor must be positive")
	}
	if p.MinTextLength < 0 || p.LowTextThreshold < 0 {
		return fmt.Errorf("text length limits must be non-negative")
	}
	return nil
}

// Compute scores a validated signal against w. It is deterministic: the
// same signal, weights version and params always produce the same scores.
func Compute(s *Signal, w *WeightConfig, p Params) Scores {
	var (
		primary     bool
		secondaryAR int
		tpHits      int
	)
	for _, hit := range s.KeywordHits {
		switch hit.Class {
		case Arbeitsbericht:
			if hit.Primary {
				primary = true
			} else {
				secondaryAR++
			}
		case Typeplate:
			tpHits++
		}
	}

	label, labeled := s.VisionClass()
	vision := func(c Class) float64 {
		if !labeled || label != c {
			return 0
		}
		return w.Get(c, Vision) * value(s.VisionConfidence)
	}

	var ar float64
	if primary {
		ar = p.PrimaryKeywordBonus + w.Get(Arbeitsbericht, KeywordHit)*float64(secondaryAR)
		if s.TextLength > p.MinTextLength {
			ar += w.Get(Arbeitsbericht, LongText)
		}
	}
	ar += vision(Arbeitsbericht)

	tp := vision(Typeplate) +
		w.Get(Typeplate, KeywordHit)*float64(tpHits) +
		w.Get(Typeplate, DigitRatio)*value(s.DigitRatio) +
		w.Get(Typeplate, EdgeDensity)*value(s.EdgeDensity) +
		w.Get(Typeplate, ColorUniformity)*value(s.ColorUniformity) +
		w.Get(Typeplate, Border)*value(s.BorderScore) +
		w.Get(Typeplate, Geometry)*value(s.GeometryConfidence)

	doc := w.Get(Document, TextLength)*float64(s.TextLength)/p.DocTextDivisor + vision(Document)

	var photo float64
	if s.TextLength < p.LowTextThreshold {
		photo += w.Get(Photo, LowText)
	}
	if tpHits == 0 {
		photo += p.NoKeywordBonus
	}
	if value(s.DigitRatio) == 0 {
		photo += p.NoDigitBonus
	}
	photo += vision(Photo)

	return Scores{
		AR:    sanitize(ar),
		TP:    sanitize(tp),
		DOC:   sanitize(doc),
		PHOTO: sanitize(photo),
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
