package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
	"github.com/JaimeStill/docsort/pkg/pagination"
)

// System defines the public contract for classification domain operations.
type System interface {
	Handler() *Handler
	Learning() learning.System

	Classify(ctx context.Context, signal scoring.Signal) (*Result, error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Feedback(ctx context.Context, id uuid.UUID, cmd FeedbackCommand) (*FeedbackResult, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]Neighbor, error)
	Reproduce(ctx context.Context, id uuid.UUID) (*Reproduction, error)

	Stats(ctx context.Context) learning.Stats
	Reset(ctx context.Context)

	// Hydrate rebuilds in-memory state from the store without re-learning.
	Hydrate(ctx context.Context) (*HydrateReport, error)
	Start(lc *lifecycle.Coordinator) error
}
