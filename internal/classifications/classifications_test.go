package classifications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/internal/similarity"
	"github.com/JaimeStill/docsort/pkg/pagination"
	"github.com/JaimeStill/docsort/pkg/storage"
)

func ptr(v float64) *float64 { return &v }

// workReport scores AR 11 under the default weights.
func workReport() scoring.Signal {
	return scoring.Signal{
		TextLength: 900,
		KeywordHits: []scoring.KeywordMatch{
			{Keyword: "arbeitsbericht", Class: scoring.Arbeitsbericht, Primary: true},
			{Keyword: "auftrag", Position: 40, Class: scoring.Arbeitsbericht},
			{Keyword: "monteur", Position: 80, Class: scoring.Arbeitsbericht},
		},
		DigitRatio:       ptr(0.1),
		VisionLabel:      "Work Report",
		VisionConfidence: ptr(0.5),
	}
}

func withEmbedding(s scoring.Signal, v ...float64) scoring.Signal {
	s.Fingerprint = &similarity.Fingerprint{Embedding: v}
	return s
}

type memStore struct {
	mu       sync.Mutex
	fail     error
	snapshot *learning.Snapshot
	records  []classifications.Record
	entries  []feedback.Entry
	configs  []learning.Snapshot
}

func (m *memStore) SaveRecord(_ context.Context, r classifications.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memStore) SaveFeedback(_ context.Context, e feedback.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) SaveConfig(_ context.Context, s learning.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.configs = append(m.configs, s)
	return nil
}

func (m *memStore) LoadConfig(context.Context) (learning.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return learning.Snapshot{}, m.fail
	}
	if m.snapshot == nil {
		return learning.Snapshot{}, classifications.ErrNoConfig
	}
	return *m.snapshot, nil
}

func (m *memStore) LoadRecords(context.Context) ([]classifications.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]classifications.Record(nil), m.records...), m.fail
}

func (m *memStore) LoadFeedback(context.Context) ([]feedback.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]feedback.Entry(nil), m.entries...), m.fail
}

func testConfig(t *testing.T) classifications.Config {
	t.Helper()
	var sim similarity.Config
	if err := sim.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return classifications.Config{
		Scoring:    scoring.DefaultParams(),
		Learning:   learning.DefaultConfig(),
		Similarity: sim,
	}
}

func newSystem(t *testing.T, store classifications.Store) classifications.System {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return classifications.New(
		testConfig(t),
		store,
		storage.Disabled(),
		logger,
		pagination.Config{DefaultPageSize: 25, MaxPageSize: 200},
	)
}

func TestClassify(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	res, err := sys.Classify(ctx, workReport())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Predicted != scoring.Arbeitsbericht || res.Rule != scoring.RuleArbeitsbericht {
		t.Errorf("got %s via %s", res.Predicted, res.Rule)
	}
	if res.Scores.AR != 11 || res.WeightsVersion != 1 || res.ThresholdsVersion != 1 {
		t.Errorf("result: %+v", res)
	}

	rec, err := sys.Find(ctx, res.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if rec.Result() != *res {
		t.Errorf("stored record differs from result: %+v", rec.Result())
	}
	if rec.Signal.TextLength != 900 || len(rec.Signal.KeywordHits) != 3 {
		t.Errorf("signal not stored: %+v", rec.Signal)
	}

	if _, err := sys.Find(ctx, uuid.New()); !errors.Is(err, classifications.ErrNotFound) {
		t.Errorf("Find unknown: got %v", err)
	}
}

func TestClassifyRejectsInvalidSignal(t *testing.T) {
	sys := newSystem(t, nil)

	_, err := sys.Classify(context.Background(), scoring.Signal{EdgeDensity: ptr(2)})
	if !errors.Is(err, scoring.ErrInvalidSignal) {
		t.Fatalf("got %v, want ErrInvalidSignal", err)
	}
	if got := classifications.MapHTTPStatus(err); got != http.StatusBadRequest {
		t.Errorf("status: got %d", got)
	}
}

func TestFeedback(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	res, _ := sys.Classify(ctx, workReport())

	out, err := sys.Feedback(ctx, res.ID, classifications.FeedbackCommand{CorrectedClass: "DOC"})
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if !out.Accepted || out.WeightsVersion != 2 || out.FeedbackCount != 1 || out.Accuracy != 0 {
		t.Errorf("result: %+v", out)
	}

	cfg := learning.DefaultConfig()
	w := sys.Learning().Current().Weights
	if got := w.Get(scoring.Arbeitsbericht, scoring.KeywordHit); got != 2.0*(1+cfg.Penalty) {
		t.Errorf("AR keyword weight: got %v", got)
	}
	if got := w.Get(scoring.Document, scoring.Vision); got != 2.0*(1+cfg.Reward) {
		t.Errorf("DOC vision weight: got %v", got)
	}

	tests := []struct {
		name   string
		id     uuid.UUID
		cmd    classifications.FeedbackCommand
		want   error
		status int
	}{
		{"duplicate", res.ID, classifications.FeedbackCommand{CorrectedClass: "AR"}, classifications.ErrDuplicate, http.StatusConflict},
		{"unknown record", uuid.New(), classifications.FeedbackCommand{CorrectedClass: "AR"}, classifications.ErrNotFound, http.StatusNotFound},
		{"invalid class", res.ID, classifications.FeedbackCommand{CorrectedClass: "invoice"}, scoring.ErrInvalidClass, http.StatusBadRequest},
		{"invalid confidence", res.ID, classifications.FeedbackCommand{CorrectedClass: "AR", UserConfidence: "sure"}, feedback.ErrInvalidConfidence, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Feedback(ctx, tt.id, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if got := classifications.MapHTTPStatus(err); got != tt.status {
				t.Errorf("status: got %d, want %d", got, tt.status)
			}
		})
	}

	if v := sys.Learning().Current().Weights.Version(); v != 2 {
		t.Errorf("rejected feedback changed weights: v%d", v)
	}
}

func TestConcurrentFeedback(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	const n = 20
	ids := make([]uuid.UUID, n)
	for i := range ids {
		res, err := sys.Classify(ctx, workReport())
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = res.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Go(func() {
			if _, err := sys.Feedback(ctx, id, classifications.FeedbackCommand{CorrectedClass: "AR"}); err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()

	stats := sys.Stats(ctx)
	if stats.Total != n || stats.Accuracy != 1 {
		t.Errorf("stats: total=%d accuracy=%v", stats.Total, stats.Accuracy)
	}
	if stats.WeightsVersion != n+1 {
		t.Errorf("weights version: got %d, want %d", stats.WeightsVersion, n+1)
	}
}

func TestReproduce(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	first, _ := sys.Classify(ctx, workReport())
	sys.Feedback(ctx, first.ID, classifications.FeedbackCommand{CorrectedClass: "TP"})
	second, _ := sys.Classify(ctx, workReport())

	if second.WeightsVersion != 2 || second.Scores == first.Scores {
		t.Fatalf("second classification did not use learned weights: %+v", second)
	}

	rep, err := sys.Reproduce(ctx, first.ID)
	if err != nil {
		t.Fatalf("Reproduce: %v", err)
	}
	if !rep.Match || rep.Reproduced.WeightsVersion != 1 || rep.Reproduced.Scores != first.Scores {
		t.Errorf("reproduction: %+v", rep)
	}

	if _, err := sys.Reproduce(ctx, uuid.New()); !errors.Is(err, classifications.ErrNotFound) {
		t.Errorf("unknown record: got %v", err)
	}
}

func TestSimilar(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	query, _ := sys.Classify(ctx, withEmbedding(workReport(), 1, 0))
	near, _ := sys.Classify(ctx, withEmbedding(workReport(), 0.9, 0.1))
	sys.Classify(ctx, withEmbedding(workReport(), -1, 0))
	bare, _ := sys.Classify(ctx, workReport())

	neighbors, err := sys.Similar(ctx, query.ID, 0)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(neighbors) == 0 || neighbors[0].ID != near.ID {
		t.Fatalf("nearest neighbor: %+v", neighbors)
	}
	for _, n := range neighbors {
		if n.ID == query.ID {
			t.Error("query record returned as its own neighbor")
		}
	}

	limited, _ := sys.Similar(ctx, query.ID, 1)
	if len(limited) != 1 {
		t.Errorf("limit 1: got %d neighbors", len(limited))
	}

	none, err := sys.Similar(ctx, bare.ID, 5)
	if err != nil || len(none) != 0 {
		t.Errorf("record without fingerprint: %v, %v", none, err)
	}

	if _, err := sys.Similar(ctx, uuid.New(), 5); !errors.Is(err, classifications.ErrNotFound) {
		t.Errorf("unknown record: got %v", err)
	}
}

func TestList(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	for range 3 {
		sys.Classify(ctx, workReport())
	}
	photo, _ := sys.Classify(ctx, scoring.Signal{})

	all, err := sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, classifications.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 4 || len(all.Data) != 2 || all.TotalPages != 2 {
		t.Errorf("page: total=%d len=%d pages=%d", all.Total, len(all.Data), all.TotalPages)
	}
	if all.Data[0].ID != photo.ID {
		t.Error("records not listed newest first")
	}

	class := photo.Predicted
	filtered, _ := sys.List(ctx, pagination.PageRequest{}, classifications.Filters{Predicted: &class})
	if filtered.Total != 1 || filtered.Data[0].ID != photo.ID {
		t.Errorf("filter by predicted: %+v", filtered)
	}
}

func TestResetKeepsConfig(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	res, _ := sys.Classify(ctx, workReport())
	sys.Feedback(ctx, res.ID, classifications.FeedbackCommand{CorrectedClass: "AR"})

	sys.Reset(ctx)

	stats := sys.Stats(ctx)
	if stats.Total != 0 || stats.WeightsVersion != 2 {
		t.Errorf("after reset: total=%d weights=v%d", stats.Total, stats.WeightsVersion)
	}
	if _, err := sys.Feedback(ctx, res.ID, classifications.FeedbackCommand{CorrectedClass: "AR"}); err != nil {
		t.Errorf("feedback after reset: %v", err)
	}
}

func TestPersistence(t *testing.T) {
	store := &memStore{}
	sys := newSystem(t, store)
	ctx := context.Background()

	res, _ := sys.Classify(ctx, workReport())
	sys.Feedback(ctx, res.ID, classifications.FeedbackCommand{CorrectedClass: "PHOTO", Reason: "blurry scan"})

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 1 || len(store.entries) != 1 || len(store.configs) != 1 {
		t.Fatalf("store holds %d records, %d entries, %d configs", len(store.records), len(store.entries), len(store.configs))
	}
	if store.entries[0].Reason != "blurry scan" || store.entries[0].Predicted != scoring.Arbeitsbericht {
		t.Errorf("entry: %+v", store.entries[0])
	}
	if store.configs[0].Weights.Version() != 2 {
		t.Errorf("config version: got %d", store.configs[0].Weights.Version())
	}
}

func TestStoreFailuresAreNonFatal(t *testing.T) {
	store := &memStore{fail: errors.New("connection refused")}
	sys := newSystem(t, store)
	ctx := context.Background()

	res, err := sys.Classify(ctx, workReport())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if _, err := sys.Feedback(ctx, res.ID, classifications.FeedbackCommand{CorrectedClass: "AR"}); err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if _, err := sys.Hydrate(ctx); err == nil {
		t.Error("Hydrate with failing store succeeded")
	}
	if _, err := sys.Find(ctx, res.ID); err != nil {
		t.Errorf("in-memory record lost: %v", err)
	}
}

func TestHydrate(t *testing.T) {
	w, _ := scoring.NewWeightConfig(5, scoring.DefaultWeights().Values())
	th, _ := scoring.NewThresholdConfig(3, scoring.DefaultThresholds().Values())

	now := time.Now().UTC()
	confirmed := classifications.Record{
		ID:                uuid.New(),
		Signal:            withEmbedding(workReport(), 1, 0),
		Scores:            scoring.Scores{AR: 11, DOC: 3, TP: 1, PHOTO: 1},
		Predicted:         scoring.Arbeitsbericht,
		Confidence:        (11.0 - 3.0) / 11.0,
		Rule:              scoring.RuleArbeitsbericht,
		WeightsVersion:    5,
		ThresholdsVersion: 3,
		CreatedAt:         now.Add(-time.Hour),
	}
	pending := confirmed
	pending.ID = uuid.New()
	pending.CreatedAt = now

	entry := feedback.Entry{
		Event: feedback.Event{
			ID:               uuid.New(),
			ClassificationID: confirmed.ID,
			CorrectedClass:   scoring.Arbeitsbericht,
			UserConfidence:   feedback.High,
			CreatedAt:        now,
		},
		Predicted: scoring.Arbeitsbericht,
		Scores:    confirmed.Scores,
	}
	duplicate := entry
	duplicate.ID = uuid.New()

	store := &memStore{
		snapshot: &learning.Snapshot{Weights: w, Thresholds: th},
		records:  []classifications.Record{confirmed, pending},
		entries:  []feedback.Entry{entry, duplicate},
	}
	sys := newSystem(t, store)
	ctx := context.Background()

	report, err := sys.Hydrate(ctx)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	want := classifications.HydrateReport{ConfigRestored: true, Records: 2, Feedback: 1, Skipped: 1}
	if *report != want {
		t.Errorf("report: got %+v, want %+v", *report, want)
	}

	stats := sys.Stats(ctx)
	if stats.WeightsVersion != 5 || stats.ThresholdsVersion != 3 || stats.Total != 1 {
		t.Errorf("stats: %+v", stats)
	}

	if _, err := sys.Feedback(ctx, confirmed.ID, classifications.FeedbackCommand{CorrectedClass: "AR"}); !errors.Is(err, classifications.ErrDuplicate) {
		t.Errorf("replayed feedback not deduplicated: %v", err)
	}
	out, err := sys.Feedback(ctx, pending.ID, classifications.FeedbackCommand{CorrectedClass: "AR"})
	if err != nil || out.WeightsVersion != 6 {
		t.Errorf("feedback after hydrate: %+v, %v", out, err)
	}

	rep, err := sys.Reproduce(ctx, confirmed.ID)
	if err != nil || !rep.Match {
		t.Errorf("Reproduce hydrated record: %+v, %v", rep, err)
	}

	neighbors, _ := sys.Similar(ctx, pending.ID, 5)
	if len(neighbors) != 1 || neighbors[0].ID != confirmed.ID {
		t.Errorf("hydrated index: %+v", neighbors)
	}
}
