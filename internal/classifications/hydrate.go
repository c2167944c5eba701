package classifications

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
)

// HydrateReport summarizes state restored from the store.
type HydrateReport struct {
	ConfigRestored bool `json:"config_restored"`
	Records        int  `json:"records"`
	Feedback       int  `json:"feedback"`
	Skipped        int  `json:"skipped"`
}

// Hydrate loads configuration, records and feedback concurrently, then
// installs them in that order. Feedback is replayed into the ledger
// without driving weight updates; the restored configuration already
// reflects it.
func (r *repo) Hydrate(ctx context.Context) (*HydrateReport, error) {
	var (
		snap    learning.Snapshot
		hasSnap bool
		records []Record
		entries []feedback.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := r.store.LoadConfig(gctx)
		switch {
		case errors.Is(err, ErrNoConfig):
			return nil
		case err != nil:
			return fmt.Errorf("load config: %w", err)
		}
		snap, hasSnap = s, true
		return nil
	})

	g.Go(func() error {
		var err error
		if records, err = r.store.LoadRecords(gctx); err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if entries, err = r.store.LoadFeedback(gctx); err != nil {
			return fmt.Errorf("load feedback: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &HydrateReport{}

	if hasSnap {
		if err := r.learning.Restore(snap); err != nil {
			return nil, fmt.Errorf("restore config: %w", err)
		}
		report.ConfigRestored = true
	}

	for _, rec := range records {
		if r.add(rec) {
			report.Records++
		}
	}

	r.feedback.Lock()
	report.Skipped = r.ledger.Restore(entries)
	r.feedback.Unlock()
	report.Feedback = len(entries) - report.Skipped

	return report, nil
}
