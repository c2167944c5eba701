package similarity

import (
	"cmp"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Match is one ranked search result.
type Match struct {
	ID         string    `json:"id"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Index answers nearest-neighbor queries over fingerprints. Implementations
// must rank with Similarity so that backends are interchangeable.
type Index interface {
	// Add indexes a fingerprint. Re-adding an id replaces its entry.
	Add(id string, fp Fingerprint, createdAt time.Time)
	// Search ranks indexed entries against the query, excluding the
	// entry with id exclude, returning at most limit matches.
	Search(query Fingerprint, exclude string, limit int) []Match
	Len() int
	Reset()
}

type entry struct {
	id        string
	fp        Fingerprint
	createdAt time.Time
}

type cacheKey struct {
	exclude    string
	limit      int
	generation uint64
}

// LinearIndex scans every entry per query. Search results for indexed
// query ids are cached until the next write.
type LinearIndex struct {
	mu         sync.RWMutex
	weights    Weights
	entries    []entry
	positions  map[string]int
	generation uint64
	cache      *lru.Cache[cacheKey, []Match]
}

// NewLinearIndex creates an index ranking with w. cacheSize <= 0 disables caching.
func NewLinearIndex(w Weights, cacheSize int) *LinearIndex {
	idx := &LinearIndex{
		weights:   w,
		positions: make(map[string]int),
	}
	if cacheSize > 0 {
		idx.cache, _ = lru.New[cacheKey, []Match](cacheSize)
	}
	return idx
}

func (x *LinearIndex) Add(id string, fp Fingerprint, createdAt time.Time) {
	if fp.Empty() {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	e := entry{id: id, fp: fp.Clone(), createdAt: createdAt}
	if i, ok := x.positions[id]; ok {
		x.entries[i] = e
	} else {
		x.positions[id] = len(x.entries)
		x.entries = append(x.entries, e)
	}
	x.generation++
}

// Lookup returns the indexed fingerprint for id.
func (x *LinearIndex) Lookup(id string) (Fingerprint, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	i, ok := x.positions[id]
	if !ok {
		return Fingerprint{}, false
	}
	return x.entries[i].fp, true
}

// SearchByID ranks neighbors of an indexed entry. Results are cached per
// (id, limit) until the index changes.
func (x *LinearIndex) SearchByID(id string, limit int) ([]Match, bool) {
	x.mu.RLock()
	i, ok := x.positions[id]
	if !ok {
		x.mu.RUnlock()
		return nil, false
	}
	query := x.entries[i].fp
	key := cacheKey{exclude: id, limit: limit, generation: x.generation}
	x.mu.RUnlock()

	if x.cache != nil {
		if hit, ok := x.cache.Get(key); ok {
			return slices.Clone(hit), true
		}
	}

	matches, generation := x.search(query, id, limit)
	if x.cache != nil && generation == key.generation {
		x.cache.Add(key, slices.Clone(matches))
	}
	return matches, true
}

func (x *LinearIndex) Search(query Fingerprint, exclude string, limit int) []Match {
	matches, _ := x.search(query, exclude, limit)
	return matches
}

func (x *LinearIndex) search(query Fingerprint, exclude string, limit int) ([]Match, uint64) {
	x.mu.RLock()
	matches := make([]Match, 0, len(x.entries))
	for _, e := range x.entries {
		if e.id == exclude {
			continue
		}
		matches = append(matches, Match{
			ID:         e.id,
			Similarity: Similarity(&query, &e.fp, x.weights),
			CreatedAt:  e.createdAt,
		})
	}
	generation := x.generation
	x.mu.RUnlock()

	Rank(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, generation
}

// Rank orders matches by descending similarity, then most recent first, then id.
func Rank(matches []Match) {
	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func (x *LinearIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *LinearIndex) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.entries = nil
	x.positions = make(map[string]int)
	x.generation++
	if x.cache != nil {
		x.cache.Purge()
	}
}
