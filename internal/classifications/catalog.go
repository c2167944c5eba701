package classifications

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/feedback"
)

// catalog holds records in creation order. It resolves feedback
// references for the ledger.
type catalog struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	order   []uuid.UUID
}

func newCatalog() *catalog {
	return &catalog{records: make(map[uuid.UUID]Record)}
}

// put stores r unless a record with its id already exists.
func (c *catalog) put(r Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[r.ID]; ok {
		return false
	}
	c.records[r.ID] = r
	c.order = append(c.order, r.ID)
	return true
}

func (c *catalog) get(id uuid.UUID) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[id]
	return r, ok
}

// list returns matching records newest first.
func (c *catalog) list(f Filters) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, 0, len(c.order))
	for _, id := range slices.Backward(c.order) {
		r := c.records[id]
		if f.Match(&r) {
			out = append(out, r)
		}
	}
	return out
}

func (c *catalog) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *catalog) Resolve(id uuid.UUID) (feedback.Prediction, bool) {
	r, ok := c.get(id)
	if !ok {
		return feedback.Prediction{}, false
	}
	return feedback.Prediction{Class: r.Predicted, Scores: r.Scores}, true
}
