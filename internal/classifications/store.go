package classifications

import (
	"context"
	"errors"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
)

// ErrNoConfig is returned by Store.LoadConfig when nothing was persisted.
var ErrNoConfig = errors.New("no persisted configuration")

// Store persists records, feedback and configuration versions. Failures
// are logged by the caller and never fail the in-memory operation.
type Store interface {
	SaveRecord(ctx context.Context, r Record) error
	SaveFeedback(ctx context.Context, e feedback.Entry) error
	SaveConfig(ctx context.Context, s learning.Snapshot) error

	// LoadConfig returns the latest persisted snapshot or ErrNoConfig.
	LoadConfig(ctx context.Context) (learning.Snapshot, error)
	// LoadRecords returns records in creation order.
	LoadRecords(ctx context.Context) ([]Record, error)
	// LoadFeedback returns entries in append order.
	LoadFeedback(ctx context.Context) ([]feedback.Entry, error)
}

type memoryOnly struct{}

// NopStore returns a Store that persists nothing and loads nothing.
func NopStore() Store { return memoryOnly{} }

func (memoryOnly) SaveRecord(context.Context, Record) error { return nil }
func (memoryOnly) SaveFeedback(context.Context, feedback.Entry) error { return nil }
func (memoryOnly) SaveConfig(context.Context, learning.Snapshot) error { return nil }
func (memoryOnly) LoadRecords(context.Context) ([]Record, error) { return nil, nil }
func (memoryOnly) LoadFeedback(context.Context) ([]feedback.Entry, error) { return nil, nil }

func (memoryOnly) LoadConfig(context.Context) (learning.Snapshot, error) {
	return learning.Snapshot{}, ErrNoConfig
}
