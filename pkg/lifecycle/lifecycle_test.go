package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

type fixedReady bool

func (f fixedReady) Ready() bool { return bool(f) }

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupFailure(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("boom")
	lc.OnStartup(func() error { return boom })

	err := lc.WaitForStartup()
	if !errors.Is(err, boom) {
		t.Fatalf("WaitForStartup() error = %v, want boom", err)
	}
	if lc.Ready() {
		t.Error("should not be ready after a failed startup hook")
	}
}

func TestTrackedReadiness(t *testing.T) {
	lc := lifecycle.New()
	lc.Track(fixedReady(true))
	lc.Track(fixedReady(false))
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("should not be ready while a tracked subsystem is not ready")
	}
}

func TestShutdownRunsHooksAndWorkers(t *testing.T) {
	lc := lifecycle.New()

	var cleaned, stopped atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})
	lc.Go(func(ctx context.Context) {
		<-ctx.Done()
		stopped.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
	if !stopped.Load() {
		t.Error("worker did not observe cancellation")
	}
	if lc.Ready() {
		t.Error("should not be ready after shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}
