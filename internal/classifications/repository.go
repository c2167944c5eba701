package classifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/internal/similarity"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
	"github.com/JaimeStill/docsort/pkg/pagination"
	"github.com/JaimeStill/docsort/pkg/storage"
)

// Config assembles the tunables of the classification service.
type Config struct {
	Scoring    scoring.Params
	Learning   learning.Config
	Similarity similarity.Config
}

type repo struct {
	cfg        Config
	catalog    *catalog
	ledger     *feedback.Ledger
	learning   learning.System
	index      *similarity.LinearIndex
	store      Store
	logger     *slog.Logger
	pagination pagination.Config

	// feedback serializes ledger appends with the weight updates they drive.
	feedback sync.Mutex
	hydrated atomic.Bool
}

// New creates the classification system and the learning system it feeds.
// A nil store keeps all state in memory. blobs serves archived config
// snapshots and may be storage.Disabled().
func New(
	cfg Config,
	store Store,
	blobs storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	if store == nil {
		store = memoryOnly{}
	}

	cat := newCatalog()
	ledger := feedback.NewLedger(cat)

	r := &repo{
		cfg:        cfg,
		catalog:    cat,
		ledger:     ledger,
		learning:   learning.New(cfg.Learning, ledger, blobs, logger),
		index:      similarity.NewLinearIndex(cfg.Similarity.Weights, cfg.Similarity.CacheSize),
		store:      store,
		logger:     logger.With("system", "classifications"),
		pagination: pagination,
	}

	r.learning.OnPublish(func(s learning.Snapshot) {
		r.persist("save config", store.SaveConfig(context.Background(), s))
	})
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Learning() learning.System {
	return r.learning
}

func (r *repo) Classify(ctx context.Context, signal scoring.Signal) (*Result, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}

	snap := r.learning.Current()
	scores := scoring.Compute(&signal, snap.Weights, r.cfg.Scoring)
	d := scoring.Decide(scores, snap.Thresholds)

	rec := Record{
		ID:                uuid.New(),
		Signal:            signal.Clone(),
		Scores:            scores,
		Predicted:         d.Class,
		Confidence:        d.Confidence,
		Rule:              d.Rule,
		WeightsVersion:    snap.Weights.Version(),
		ThresholdsVersion: snap.Thresholds.Version(),
		CreatedAt:         time.Now().UTC(),
	}

	r.add(rec)
	r.persist("save record", r.store.SaveRecord(context.WithoutCancel(ctx), rec))

	r.logger.Debug(
		"document classified",
		"id", rec.ID,
		"predicted", rec.Predicted,
		"rule", rec.Rule,
		"confidence", rec.Confidence,
	)

	result := rec.Result()
	return &result, nil
}

// add makes a record visible to lookups, feedback and similarity search.
func (r *repo) add(rec Record) bool {
	if !r.catalog.put(rec) {
		return false
	}
	if fp := rec.Signal.Fingerprint; fp != nil {
		r.index.Add(rec.ID.String(), *fp, rec.CreatedAt)
	}
	return true
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := r.catalog.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	result := pagination.Paginate(r.catalog.list(filters), page)
	return &result, nil
}

func (r *repo) Feedback(ctx context.Context, id uuid.UUID, cmd FeedbackCommand) (*FeedbackResult, error) {
	corrected, err := scoring.ParseClass(cmd.CorrectedClass)
	if err != nil {
		return nil, err
	}
	confidence, err := feedback.ParseConfidence(cmd.UserConfidence)
	if err != nil {
		return nil, err
	}

	ev := feedback.Event{
		ID:               uuid.New(),
		ClassificationID: id,
		CorrectedClass:   corrected,
		UserConfidence:   confidence,
		Reason:           cmd.Reason,
		CreatedAt:        time.Now().UTC(),
	}

	r.feedback.Lock()
	entry, count, err := r.ledger.Append(ev)
	if err != nil {
		r.feedback.Unlock()
		return nil, fmt.Errorf("record feedback for %s: %w", id, err)
	}
	outcome, learnErr := r.learning.Learn(entry, count)
	r.feedback.Unlock()

	if learnErr != nil {
		r.logger.Error("weight update rejected", "classification", id, "error", learnErr)
	}

	r.persist("save feedback", r.store.SaveFeedback(context.WithoutCancel(ctx), entry))

	reason := "prediction confirmed"
	if !entry.Correct() {
		reason = fmt.Sprintf("corrected %s to %s", entry.Predicted, entry.CorrectedClass)
	}

	stats := r.ledger.Stats(0)
	return &FeedbackResult{
		Accepted:              true,
		Reason:                reason,
		WeightsVersion:        outcome.Snapshot.Weights.Version(),
		ThresholdsVersion:     outcome.Snapshot.Thresholds.Version(),
		OptimizationScheduled: outcome.Scheduled,
		Accuracy:              stats.Accuracy,
		FeedbackCount:         stats.Total,
	}, nil
}

func (r *repo) Similar(ctx context.Context, id uuid.UUID, limit int) ([]Neighbor, error) {
	if _, ok := r.catalog.get(id); !ok {
		return nil, ErrNotFound
	}

	matches, _ := r.index.SearchByID(id.String(), r.cfg.Similarity.Limit(limit))

	neighbors := make([]Neighbor, 0, len(matches))
	for _, m := range matches {
		mid, err := uuid.Parse(m.ID)
		if err != nil {
			continue
		}
		rec, ok := r.catalog.get(mid)
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			ID:         mid,
			Similarity: m.Similarity,
			Predicted:  rec.Predicted,
			CreatedAt:  m.CreatedAt,
		})
	}
	return neighbors, nil
}

func (r *repo) Reproduce(ctx context.Context, id uuid.UUID) (*Reproduction, error) {
	rec, ok := r.catalog.get(id)
	if !ok {
		return nil, ErrNotFound
	}

	w, ok := r.learning.WeightsAt(rec.WeightsVersion)
	if !ok {
		return nil, fmt.Errorf("%w: weights version %d", learning.ErrVersionUnavailable, rec.WeightsVersion)
	}
	t, ok := r.learning.ThresholdsAt(rec.ThresholdsVersion)
	if !ok {
		return nil, fmt.Errorf("%w: thresholds version %d", learning.ErrVersionUnavailable, rec.ThresholdsVersion)
	}

	scores := scoring.Compute(&rec.Signal, w, r.cfg.Scoring)
	d := scoring.Decide(scores, t)

	reproduced := Result{
		ID:                rec.ID,
		Predicted:         d.Class,
		Confidence:        d.Confidence,
		Scores:            scores,
		Rule:              d.Rule,
		WeightsVersion:    w.Version(),
		ThresholdsVersion: t.Version(),
	}

	return &Reproduction{
		Original:   rec.Result(),
		Reproduced: reproduced,
		Match:      reproduced == rec.Result(),
	}, nil
}

func (r *repo) Stats(ctx context.Context) learning.Stats {
	return r.learning.Stats()
}

// Reset clears feedback history. Records, weights and thresholds are kept.
func (r *repo) Reset(ctx context.Context) {
	r.feedback.Lock()
	defer r.feedback.Unlock()
	r.learning.ResetHistory()
}

// Ready reports whether hydration has finished.
func (r *repo) Ready() bool {
	return r.hydrated.Load()
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting classifications system")

	lc.Track(r)
	lc.OnStartup(func() error {
		defer r.hydrated.Store(true)

		report, err := r.Hydrate(lc.Context())
		if err != nil {
			r.logger.Warn("hydration incomplete, continuing in memory", "error", err)
			return nil
		}

		r.logger.Info(
			"classifications hydrated",
			"records", report.Records,
			"feedback", report.Feedback,
			"skipped", report.Skipped,
			"config_restored", report.ConfigRestored,
		)
		return nil
	})

	return r.learning.Start(lc)
}

func (r *repo) persist(op string, err error) {
	if err != nil {
		r.logger.Warn("store write failed", "op", op, "error", err)
	}
}
