package similarity_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/JaimeStill/docsort/internal/similarity"
)

func fingerprints() map[string]similarity.Fingerprint {
	return map[string]similarity.Fingerprint{
		"full": {
			Hash:           similarity.Hash{0xf0, 0x0f},
			ColorHistogram: []float64{0.5, 0.3, 0.2},
			EdgeHistogram:  []float64{1, 0, 3},
			Embedding:      []float64{0.1, -0.4, 0.9},
		},
		"hash only":      {Hash: similarity.Hash{0xaa, 0x55, 0x00}},
		"embedding only": {Embedding: []float64{-0.3, 0.2, 0.7}},
		"unit embedding": {Embedding: []float64{1, 1}},
		"histograms": {
			ColorHistogram: []float64{0.2, 0.2, 0.6},
			EdgeHistogram:  []float64{2, 2, 0},
		},
	}
}

func TestSelfSimilarity(t *testing.T) {
	w := similarity.DefaultWeights()
	for name, fp := range fingerprints() {
		t.Run(name, func(t *testing.T) {
			if got := similarity.Similarity(&fp, &fp, w); got != 1 {
				t.Errorf("Similarity(X, X) = %v, want 1", got)
			}
		})
	}
}

func TestSymmetry(t *testing.T) {
	w := similarity.DefaultWeights()
	fps := fingerprints()
	for an, a := range fps {
		for bn, b := range fps {
			ab := similarity.Similarity(&a, &b, w)
			ba := similarity.Similarity(&b, &a, w)
			if ab != ba {
				t.Errorf("Similarity(%s, %s) = %v, reversed = %v", an, bn, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%s, %s) = %v outside [0,1]", an, bn, ab)
			}
		}
	}
}

func TestChannels(t *testing.T) {
	w := similarity.DefaultWeights()

	tests := []struct {
		name string
		a, b similarity.Fingerprint
		want float64
	}{
		{
			name: "hash one bit of 16 differs",
			a:    similarity.Fingerprint{Hash: similarity.Hash{0xff, 0x00}},
			b:    similarity.Fingerprint{Hash: similarity.Hash{0xfe, 0x00}},
			want: 1 - 1.0/16,
		},
		{
			name: "histogram chi-square",
			a:    similarity.Fingerprint{ColorHistogram: []float64{1, 0}},
			b:    similarity.Fingerprint{ColorHistogram: []float64{0, 1}},
			want: 1.0 / 3,
		},
		{
			name: "opposite embeddings",
			a:    similarity.Fingerprint{Embedding: []float64{1, 0}},
			b:    similarity.Fingerprint{Embedding: []float64{-1, 0}},
			want: 0,
		},
		{
			name: "orthogonal embeddings",
			a:    similarity.Fingerprint{Embedding: []float64{1, 0}},
			b:    similarity.Fingerprint{Embedding: []float64{0, 3}},
			want: 0.5,
		},
		{
			name: "no shared channel",
			a:    similarity.Fingerprint{Hash: similarity.Hash{0x01}},
			b:    similarity.Fingerprint{Embedding: []float64{1}},
			want: 0,
		},
		{
			name: "mismatched lengths excluded",
			a:    similarity.Fingerprint{Hash: similarity.Hash{0x01}, Embedding: []float64{1, 0}},
			b:    similarity.Fingerprint{Hash: similarity.Hash{0x01, 0x02}, Embedding: []float64{0, 1}},
			want: 0.5,
		},
		{
			name: "zero-norm embedding excluded",
			a:    similarity.Fingerprint{Hash: similarity.Hash{0x0f}, Embedding: []float64{0, 0}},
			b:    similarity.Fingerprint{Hash: similarity.Hash{0x0f}, Embedding: []float64{1, 1}},
			want: 1,
		},
		{
			// hash 0.2 at 1.0, embedding 0.4 at 0.5, renormalized over 0.6
			name: "renormalized channel weights",
			a:    similarity.Fingerprint{Hash: similarity.Hash{0x33}, Embedding: []float64{1, 0}},
			b:    similarity.Fingerprint{Hash: similarity.Hash{0x33}, Embedding: []float64{0, 1}},
			want: (0.2*1 + 0.4*0.5) / 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity.Similarity(&tt.a, &tt.b, w); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       similarity.Weights
		wantErr bool
	}{
		{"defaults", similarity.DefaultWeights(), false},
		{"embedding only", similarity.Weights{Embedding: 1}, false},
		{"sum too low", similarity.Weights{Hash: 0.2, Color: 0.2}, true},
		{"negative", similarity.Weights{Hash: -0.2, Embedding: 1.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr != (err != nil) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, similarity.ErrInvalidWeights) {
				t.Errorf("error %v is not ErrInvalidWeights", err)
			}
		})
	}
}

func TestWeightsFinalize(t *testing.T) {
	var w similarity.Weights
	if err := w.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if w != similarity.DefaultWeights() {
		t.Errorf("Finalize() = %+v, want defaults", w)
	}

	t.Setenv("TEST_SIM_HASH", "0.4")
	t.Setenv("TEST_SIM_EMBEDDING", "0.2")
	w = similarity.Weights{}
	if err := w.Finalize(&similarity.WeightsEnv{Hash: "TEST_SIM_HASH", Embedding: "TEST_SIM_EMBEDDING"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if w.Hash != 0.4 || w.Embedding != 0.2 {
		t.Errorf("env not applied: %+v", w)
	}
}

func TestFingerprintJSON(t *testing.T) {
	var fp similarity.Fingerprint
	if err := json.Unmarshal([]byte(`{"hash":"f00f","embedding":[1,2]}`), &fp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fp.Hash) != 2 || fp.Hash[0] != 0xf0 {
		t.Errorf("Hash = %x, want f00f", []byte(fp.Hash))
	}

	if err := json.Unmarshal([]byte(`{"hash":"zz"}`), &fp); err == nil {
		t.Error("expected error for malformed hash")
	}
}

func TestFingerprintValidate(t *testing.T) {
	tests := []struct {
		name    string
		fp      similarity.Fingerprint
		wantErr bool
	}{
		{"valid", fingerprints()["full"], false},
		{"negative bin", similarity.Fingerprint{EdgeHistogram: []float64{1, -1}}, true},
		{"nan embedding", similarity.Fingerprint{Embedding: []float64{math.NaN()}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fp.Validate()
			if tt.wantErr != (err != nil) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	var cfg similarity.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Weights != similarity.DefaultWeights() || cfg.DefaultLimit != 5 || cfg.MaxLimit != 50 {
		t.Errorf("defaults: %+v", cfg)
	}

	tests := []struct {
		requested int
		want      int
	}{
		{0, 5},
		{-1, 5},
		{10, 10},
		{500, 50},
	}
	for _, tt := range tests {
		if got := cfg.Limit(tt.requested); got != tt.want {
			t.Errorf("Limit(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}

	bad := similarity.Config{DefaultLimit: 80}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error when default_limit exceeds max_limit")
	}

	cfg.Merge(&similarity.Config{MaxLimit: 20, Weights: similarity.Weights{Embedding: 1}})
	if cfg.MaxLimit != 20 || cfg.Weights.Embedding != 1 || cfg.Weights.Hash != 0 {
		t.Errorf("Merge: %+v", cfg)
	}
}
