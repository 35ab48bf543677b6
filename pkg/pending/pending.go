// Package pending holds query embeddings that await user confirmation.
//
// Every tentative decision stakes its embedding here under a fresh
// capability token; a later confirm consumes the entry and commits the
// embedding to the exemplar store. Entries that are never confirmed are
// evicted once the cache overflows.
//
// Eviction is strictly FIFO by insertion order, independent of whether
// an entry was ever looked at. This reproduces the observed behavior of
// the system this was modeled on (an insertion-ordered map trimmed from
// the front), made explicit here rather than left to incidental map
// ordering. There is no TTL: an entry lives until it is taken or pushed
// out by newer stakes.
package pending

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxEntries is the default cache bound.
const DefaultMaxEntries = 100

// Cache is a bounded FIFO map from token to staked embedding.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string][]float32

	// order is the FIFO eviction queue of tokens in stake order. Tokens
	// consumed by Take stay queued and are skipped lazily at eviction
	// time; entries is the source of truth for liveness. The queue is
	// compacted once it grows past twice the bound, so its length stays
	// proportional to max regardless of how many entries were taken.
	order []string
}

// New creates a Cache bounded to max entries.
// A non-positive max uses DefaultMaxEntries.
func New(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache{
		max:     max,
		entries: make(map[string][]float32, max),
	}
}

// Stake stores an embedding and returns its capability token.
//
// Tokens are random UUIDs: unique for the process lifetime, never
// reused, and not guessable — holding the token is what authorizes a
// later confirm. If the insertion pushes the cache past its bound, the
// oldest staked entry is evicted.
func (c *Cache) Stake(embedding []float32) string {
	token := uuid.New().String()

	cp := make([]float32, len(embedding))
	copy(cp, embedding)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[token] = cp
	c.order = append(c.order, token)

	for len(c.entries) > c.max {
		c.evictOldestLocked()
	}
	return token
}

// evictOldestLocked drops the oldest still-live entry.
func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, live := c.entries[oldest]; live {
			delete(c.entries, oldest)
			return
		}
	}
}

// Take removes and returns the embedding staked under token.
// It is single-use: a second Take with the same token reports false, as
// does a token that was evicted or never staked.
func (c *Cache) Take(token string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	emb, ok := c.entries[token]
	if !ok {
		return nil, false
	}
	delete(c.entries, token)
	if len(c.order) > 2*c.max {
		c.compactLocked()
	}
	return emb, true
}

// compactLocked rebuilds the eviction queue with only live tokens,
// preserving their relative order.
func (c *Cache) compactLocked() {
	live := c.order[:0]
	for _, token := range c.order {
		if _, ok := c.entries[token]; ok {
			live = append(live, token)
		}
	}
	c.order = live
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
