package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

type write struct {
	op string
	fn func(ctx context.Context) error
}

// Async queues writes on a buffered channel drained by a single worker, so
// writes reach the inner store in submission order. Loads pass through.
type Async struct {
	inner  classifications.Store
	queue  chan write
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAsync wraps inner with a write queue of the given capacity.
func NewAsync(inner classifications.Store, buffer int, logger *slog.Logger) *Async {
	return &Async{
		inner:  inner,
		queue:  make(chan write, buffer),
		logger: logger.With("system", "async-store"),
	}
}

// Start runs the drain worker. Queued writes are flushed on shutdown.
func (a *Async) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting async store", "buffer", cap(a.queue))

	lc.Go(func(ctx context.Context) {
		for {
			select {
			case w := <-a.queue:
				a.run(w)
			case <-ctx.Done():
				a.close()
				for w := range a.queue {
					a.run(w)
				}
				a.logger.Info("async store drained")
				return
			}
		}
	})
	return nil
}

func (a *Async) SaveRecord(_ context.Context, r classifications.Record) error {
	return a.enqueue("save record", func(ctx context.Context) error {
		return a.inner.SaveRecord(ctx, r)
	})
}

func (a *Async) SaveFeedback(_ context.Context, e feedback.Entry) error {
	return a.enqueue("save feedback", func(ctx context.Context) error {
		return a.inner.SaveFeedback(ctx, e)
	})
}

func (a *Async) SaveConfig(_ context.Context, s learning.Snapshot) error {
	return a.enqueue("save config", func(ctx context.Context) error {
		return a.inner.SaveConfig(ctx, s)
	})
}

func (a *Async) LoadConfig(ctx context.Context) (learning.Snapshot, error) {
	return a.inner.LoadConfig(ctx)
}

func (a *Async) LoadRecords(ctx context.Context) ([]classifications.Record, error) {
	return a.inner.LoadRecords(ctx)
}

func (a *Async) LoadFeedback(ctx context.Context) ([]feedback.Entry, error) {
	return a.inner.LoadFeedback(ctx)
}

func (a *Async) enqueue(op string, fn func(ctx context.Context) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return fmt.Errorf("%w: %s after shutdown", ErrUnavailable, op)
	}

	select {
	case a.queue <- write{op: op, fn: fn}:
		return nil
	default:
		return fmt.Errorf("%w: %s queue full", ErrUnavailable, op)
	}
}

func (a *Async) close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.closed {
		a.closed = true
		close(a.queue)
	}
}

func (a *Async) run(w write) {
	if err := w.fn(context.Background()); err != nil {
		a.logger.Warn("store write failed", "op", w.op, "error", err)
	}
}
