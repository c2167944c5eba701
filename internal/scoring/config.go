package scoring

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// WeightConfig is an immutable, versioned set of scoring weights covering
// exactly the weight schema.
type WeightConfig struct {
	version int
	values  map[Key]float64
}

var defaultWeights = map[Key]float64{
	{Arbeitsbericht, KeywordHit}: 2.0,
	{Arbeitsbericht, LongText}:   1.5,
	{Arbeitsbericht, Vision}:     1.0,
	{Typeplate, Vision}:          4.0,
	{Typeplate, KeywordHit}:      1.5,
	{Typeplate, DigitRatio}:      10.0,
	{Typeplate, EdgeDensity}:     80.0,
	{Typeplate, ColorUniformity}: 5.0,
	{Typeplate, Border}:          3.0,
	{Typeplate, Geometry}:        1.0,
	{Document, TextLength}:       1.0,
	{Document, Vision}:           2.0,
	{Photo, LowText}:             2.0,
	{Photo, Vision}:              2.0,
}

// DefaultWeights returns version 1 of the built-in weights.
func DefaultWeights() *WeightConfig {
	return &WeightConfig{version: 1, values: maps.Clone(defaultWeights)}
}

// NewWeightConfig validates values against the schema and returns a config
// holding a private copy.
func NewWeightConfig(version int, values map[Key]float64) (*WeightConfig, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: weights version %d must be positive", ErrInvalidConfig, version)
	}
	for k, v := range values {
		if !inSchema(k) {
			return nil, fmt.Errorf("%w: unknown weight %s", ErrInvalidConfig, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: weight %s = %v must be finite and non-negative", ErrInvalidConfig, k, v)
		}
	}
	for _, k := range Schema() {
		if _, ok := values[k]; !ok {
			return nil, fmt.Errorf("%w: missing weight %s", ErrInvalidConfig, k)
		}
	}
	return &WeightConfig{version: version, values: maps.Clone(values)}, nil
}

func (w *WeightConfig) Version() int {
	return w.version
}

// Get returns the weight for a class feature; keys outside the schema are zero.
func (w *WeightConfig) Get(c Class, f Feature) float64 {
	return w.values[Key{Class: c, Feature: f}]
}

// Values returns a copy of every weight.
func (w *WeightConfig) Values() map[Key]float64 {
	return maps.Clone(w.values)
}

// Next validates values as the successor of w.
func (w *WeightConfig) Next(values map[Key]float64) (*WeightConfig, error) {
	return NewWeightConfig(w.version+1, values)
}

// SameValues reports whether both configs hold identical weights, ignoring version.
func (w *WeightConfig) SameValues(o *WeightConfig) bool {
	return maps.Equal(w.values, o.values)
}

type weightsDocument struct {
	Version int                           `json:"version"`
	Weights map[string]map[string]float64 `json:"weights"`
}

func (w *WeightConfig) MarshalJSON() ([]byte, error) {
	doc := weightsDocument{Version: w.version, Weights: make(map[string]map[string]float64)}
	for k, v := range w.values {
		code := k.Class.Code()
		if doc.Weights[code] == nil {
			doc.Weights[code] = make(map[string]float64)
		}
		doc.Weights[code][string(k.Feature)] = v
	}
	return json.Marshal(doc)
}

func (w *WeightConfig) UnmarshalJSON(data []byte) error {
	var doc weightsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	values, err := WeightValues(doc.Weights)
	if err != nil {
		return err
	}

	parsed, err := NewWeightConfig(doc.Version, values)
	if err != nil {
		return err
	}
	*w = *parsed
	return nil
}

// WeightValues converts the nested class to feature document form into
// weight keys. Class names and codes are both accepted.
func WeightValues(doc map[string]map[string]float64) (map[Key]float64, error) {
	values := make(map[Key]float64)
	for name, features := range doc {
		c, err := ParseClass(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		for f, v := range features {
			values[Key{Class: c, Feature: Feature(f)}] = v
		}
	}
	return values, nil
}

// ThresholdConfig is an immutable, versioned set of per-class decision thresholds.
type ThresholdConfig struct {
	version int
	values  map[Class]float64
}

var defaultThresholds = map[Class]float64{
	Arbeitsbericht: 5.0,
	Typeplate:      3.0,
	Document:       1.5,
	Photo:          0.0,
}

// DefaultThresholds returns version 1 of the built-in thresholds.
func DefaultThresholds() *ThresholdConfig {
	return &ThresholdConfig{version: 1, values: maps.Clone(defaultThresholds)}
}

// NewThresholdConfig validates that every class has a finite, non-negative threshold.
func NewThresholdConfig(version int, values map[Class]float64) (*ThresholdConfig, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: thresholds version %d must be positive", ErrInvalidConfig, version)
	}
	for c, v := range values {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown threshold class %q", ErrInvalidConfig, c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: threshold %s = %v must be finite and non-negative", ErrInvalidConfig, c, v)
		}
	}
	for _, c := range Classes {
		if _, ok := values[c]; !ok {
			return nil, fmt.Errorf("%w: missing threshold %s", ErrInvalidConfig, c)
		}
	}
	return &ThresholdConfig{version: version, values: maps.Clone(values)}, nil
}

func (t *ThresholdConfig) Version() int {
	return t.version
}

func (t *ThresholdConfig) Get(c Class) float64 {
	return t.values[c]
}

func (t *ThresholdConfig) Values() map[Class]float64 {
	return maps.Clone(t.values)
}

func (t *ThresholdConfig) Next(values map[Class]float64) (*ThresholdConfig, error) {
	return NewThresholdConfig(t.version+1, values)
}

func (t *ThresholdConfig) SameValues(o *ThresholdConfig) bool {
	return maps.Equal(t.values, o.values)
}

type thresholdsDocument struct {
	Version    int               `json:"version"`
	Thresholds map[Class]float64 `json:"thresholds"`
}

func (t *ThresholdConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(thresholdsDocument{Version: t.version, Thresholds: t.values})
}

func (t *ThresholdConfig) UnmarshalJSON(data []byte) error {
	var doc thresholdsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	parsed, err := NewThresholdConfig(doc.Version, doc.Thresholds)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
