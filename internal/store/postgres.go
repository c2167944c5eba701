package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/pkg/repository"
)

type pg struct {
	db *sql.DB
}

// NewPostgres returns a Store over the classifications, feedback and
// config_versions tables created by cmd/migrate.
func NewPostgres(db *sql.DB) classifications.Store {
	return &pg{db: db}
}

func (p *pg) SaveRecord(ctx context.Context, r classifications.Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO classifications(` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if err := repository.Exec(ctx, p.db, q, args...); err != nil {
		return fmt.Errorf("insert classification %s: %w", r.ID, mapError(err))
	}
	return nil
}

func (p *pg) SaveFeedback(ctx context.Context, e feedback.Entry) error {
	args, err := feedbackArgs(e)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO feedback(` + feedbackColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if err := repository.Exec(ctx, p.db, q, args...); err != nil {
		return fmt.Errorf("insert feedback %s: %w", e.ID, mapError(err))
	}
	return nil
}

// SaveConfig records the snapshot once per version pair.
func (p *pg) SaveConfig(ctx context.Context, s learning.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config snapshot: %w", err)
	}

	q := `
		INSERT INTO config_versions(weights_version, thresholds_version, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (weights_version, thresholds_version) DO NOTHING`

	return repository.InTx(ctx, p.db, func(tx *sql.Tx) error {
		return repository.Exec(ctx, tx, q, s.Weights.Version(), s.Thresholds.Version(), string(data))
	})
}

func (p *pg) LoadConfig(ctx context.Context) (learning.Snapshot, error) {
	q := `SELECT snapshot FROM config_versions ORDER BY seq DESC LIMIT 1`

	snap, err := repository.QueryOne(ctx, p.db, q, nil, scanSnapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, classifications.ErrNoConfig
	}
	if err != nil {
		return snap, fmt.Errorf("query config: %w", err)
	}
	return snap, nil
}

func (p *pg) LoadRecords(ctx context.Context) ([]classifications.Record, error) {
	q := `SELECT ` + recordColumns + ` FROM classifications ORDER BY created_at, id`

	records, err := repository.QueryMany(ctx, p.db, q, nil, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}
	return records, nil
}

func (p *pg) LoadFeedback(ctx context.Context) ([]feedback.Entry, error) {
	q := `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY seq`

	entries, err := repository.QueryMany(ctx, p.db, q, nil, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	return entries, nil
}

func mapError(err error) error {
	return repository.MapError(err, classifications.ErrNotFound, classifications.ErrDuplicate)
}
