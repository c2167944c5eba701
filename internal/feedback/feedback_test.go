package feedback_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/scoring"
)

type fixedPredictions map[uuid.UUID]feedback.Prediction

func (f fixedPredictions) Resolve(id uuid.UUID) (feedback.Prediction, bool) {
	p, ok := f[id]
	return p, ok
}

func event(classification uuid.UUID, corrected scoring.Class) feedback.Event {
	return feedback.Event{
		ID:               uuid.New(),
		ClassificationID: classification,
		CorrectedClass:   corrected,
		UserConfidence:   feedback.High,
		CreatedAt:        time.Now(),
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in      string
		want    feedback.Confidence
		wantErr bool
	}{
		{"", feedback.Medium, false},
		{"LOW", feedback.Low, false},
		{"high", feedback.High, false},
		{"certain", "", true},
	}

	for _, tt := range tests {
		got, err := feedback.ParseConfidence(tt.in)
		if tt.wantErr {
			if !errors.Is(err, feedback.ErrInvalidConfidence) {
				t.Errorf("ParseConfidence(%q) error = %v, want ErrInvalidConfidence", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseConfidence(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestLedgerAppend(t *testing.T) {
	known := uuid.New()
	preds := fixedPredictions{
		known: {Class: scoring.Document, Scores: scoring.Scores{DOC: 2.5}},
	}
	l := feedback.NewLedger(preds)

	e, n, err := l.Append(event(known, scoring.Typeplate))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if n != 1 || e.Predicted != scoring.Document || e.Scores.DOC != 2.5 {
		t.Errorf("Append() = %+v, %d", e, n)
	}
	if e.Correct() {
		t.Error("Correct() = true for a mismatch")
	}

	if _, _, err := l.Append(event(known, scoring.Document)); !errors.Is(err, feedback.ErrDuplicate) {
		t.Errorf("second Append() error = %v, want ErrDuplicate", err)
	}
	if _, _, err := l.Append(event(uuid.New(), scoring.Photo)); !errors.Is(err, feedback.ErrNotFound) {
		t.Errorf("unknown Append() error = %v, want ErrNotFound", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestLedgerWindowAndSnapshotAreCopies(t *testing.T) {
	preds := fixedPredictions{}
	l := feedback.NewLedger(preds)

	for range 5 {
		id := uuid.New()
		preds[id] = feedback.Prediction{Class: scoring.Photo}
		if _, _, err := l.Append(event(id, scoring.Photo)); err != nil {
			t.Fatal(err)
		}
	}

	window := l.Window(2)
	if len(window) != 2 {
		t.Fatalf("Window(2) len = %d", len(window))
	}
	all := l.Snapshot()
	if window[1].ID != all[4].ID {
		t.Error("Window(2) does not end with the latest entry")
	}

	all[0].Predicted = scoring.Typeplate
	if l.Snapshot()[0].Predicted != scoring.Photo {
		t.Error("Snapshot() shares backing storage with the ledger")
	}

	if got := len(l.Window(50)); got != 5 {
		t.Errorf("Window(50) len = %d, want 5", got)
	}
}

func TestLedgerResetAndRestore(t *testing.T) {
	id := uuid.New()
	preds := fixedPredictions{id: {Class: scoring.Arbeitsbericht}}
	l := feedback.NewLedger(preds)
	l.Append(event(id, scoring.Arbeitsbericht))

	l.Reset()
	if l.Len() != 0 || l.Has(id) {
		t.Fatalf("Reset() left Len=%d Has=%v", l.Len(), l.Has(id))
	}

	persisted := []feedback.Entry{
		{Event: event(id, scoring.Document), Predicted: scoring.Arbeitsbericht},
		{Event: event(id, scoring.Photo), Predicted: scoring.Arbeitsbericht},
		{Event: event(uuid.New(), scoring.Photo), Predicted: scoring.Photo},
	}
	if skipped := l.Restore(persisted); skipped != 1 {
		t.Errorf("Restore() skipped = %d, want 1", skipped)
	}
	if l.Len() != 2 || !l.Has(id) {
		t.Errorf("after Restore() Len=%d Has=%v", l.Len(), l.Has(id))
	}
}

func TestLedgerConcurrentAppend(t *testing.T) {
	preds := fixedPredictions{}
	ids := make([]uuid.UUID, 64)
	for i := range ids {
		ids[i] = uuid.New()
		preds[ids[i]] = feedback.Prediction{Class: scoring.Document}
	}
	l := feedback.NewLedger(preds)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Go(func() {
			l.Append(event(id, scoring.Document))
		})
		wg.Go(func() {
			l.Stats(feedback.DefaultRecent)
		})
	}
	wg.Wait()

	if l.Len() != len(ids) {
		t.Errorf("Len() = %d, want %d", l.Len(), len(ids))
	}
}

func TestComputeStats(t *testing.T) {
	entries := []feedback.Entry{
		{Event: event(uuid.New(), scoring.Typeplate), Predicted: scoring.Typeplate},
		{Event: event(uuid.New(), scoring.Document), Predicted: scoring.Photo},
	}

	s := feedback.ComputeStats(entries, feedback.DefaultRecent)

	if s.Total != 2 || s.Correct != 1 || s.Accuracy != 0.5 {
		t.Errorf("stats = total %d correct %d accuracy %v, want 2 1 0.5", s.Total, s.Correct, s.Accuracy)
	}
	if s.Confusion[scoring.Photo][scoring.Document] != 1 {
		t.Errorf("confusion photo -> document = %d, want 1", s.Confusion[scoring.Photo][scoring.Document])
	}
	if s.Confusion[scoring.Typeplate][scoring.Typeplate] != 1 {
		t.Errorf("confusion typeplate -> typeplate = %d, want 1", s.Confusion[scoring.Typeplate][scoring.Typeplate])
	}
	if s.Distribution.Predicted[scoring.Photo] != 1 || s.Distribution.Corrected[scoring.Document] != 1 {
		t.Errorf("distribution = %+v", s.Distribution)
	}
	if len(s.Recent) != 2 {
		t.Errorf("recent = %d, want 2", len(s.Recent))
	}
}

func TestComputeStatsEmptyAndRecentLimit(t *testing.T) {
	empty := feedback.ComputeStats(nil, feedback.DefaultRecent)
	if empty.Total != 0 || empty.Accuracy != 0 || empty.Recent == nil {
		t.Errorf("empty stats = %+v", empty)
	}

	var entries []feedback.Entry
	for range 15 {
		entries = append(entries, feedback.Entry{Event: event(uuid.New(), scoring.Photo), Predicted: scoring.Photo})
	}
	s := feedback.ComputeStats(entries, feedback.DefaultRecent)
	if len(s.Recent) != 10 || s.Recent[9].ID != entries[14].ID {
		t.Errorf("recent = %d entries, want the last 10", len(s.Recent))
	}
}
