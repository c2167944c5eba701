package feedback

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Ledger is the process-wide append-only sequence of feedback entries.
// Appends are serialized; readers receive copies taken under a read lock
// and never observe a partial append.
type Ledger struct {
	mu       sync.RWMutex
	resolver Resolver
	entries  []Entry
	seen     map[uuid.UUID]struct{}
}

func NewLedger(r Resolver) *Ledger {
	return &Ledger{
		resolver: r,
		seen:     make(map[uuid.UUID]struct{}),
	}
}

// Append resolves the referenced classification and records the event.
// It returns the entry and the number of entries held after the append.
func (l *Ledger) Append(ev Event) (Entry, int, error) {
	pred, ok := l.resolver.Resolve(ev.ClassificationID)
	if !ok {
		return Entry{}, 0, ErrNotFound
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[ev.ClassificationID]; dup {
		return Entry{}, 0, ErrDuplicate
	}

	e := Entry{Event: ev, Predicted: pred.Class, Scores: pred.Scores}
	l.entries = append(l.entries, e)
	l.seen[ev.ClassificationID] = struct{}{}
	return e, len(l.entries), nil
}

// Restore replays persisted entries in order. Entries for a classification
// that already has feedback are skipped; the number skipped is returned.
func (l *Ledger) Restore(entries []Entry) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	skipped := 0
	for _, e := range entries {
		if _, dup := l.seen[e.ClassificationID]; dup {
			skipped++
			continue
		}
		l.entries = append(l.entries, e)
		l.seen[e.ClassificationID] = struct{}{}
	}
	return skipped
}

// Has reports whether the classification already has feedback.
func (l *Ledger) Has(classificationID uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[classificationID]
	return ok
}

// Snapshot returns a copy of every entry in append order.
func (l *Ledger) Snapshot() []Entry {
	return l.Window(0)
}

// Window returns a copy of the last n entries, or all entries when n <= 0.
func (l *Ledger) Window(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if n > 0 && n < len(l.entries) {
		start = len(l.entries) - n
	}
	return slices.Clone(l.entries[start:])
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Reset discards every entry. It is an administrative operation.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.seen = make(map[uuid.UUID]struct{})
}

// Stats computes statistics over a consistent snapshot.
func (l *Ledger) Stats(recent int) Stats {
	return ComputeStats(l.Snapshot(), recent)
}
