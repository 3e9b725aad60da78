package dataset

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/communitypulse/pulse-dashboard/internal/platform/observability"
)

// cacheMaxEntries bounds the memo table. The dashboard only ever
// alternates between a local file and the last upload, so a handful of
// entries is plenty; overflow clears the table rather than tracking
// recency.
const cacheMaxEntries = 8

// Cache memoizes normalized tables keyed by content fingerprint.
// Reloading unchanged bytes returns the previously normalized table;
// changed bytes miss and re-parse. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*Table
}

// NewCache returns an empty load cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*Table)}
}

// Load parses data through the cache. The returned bool reports a
// cache hit.
func (c *Cache) Load(data []byte, label string) (*Table, bool, error) {
	key := xxhash.Sum64(data)

	c.mu.Lock()
	table, ok := c.entries[key]
	c.mu.Unlock()

	if ok {
		observability.DatasetCacheHits.Inc()

		return table, true, nil
	}

	observability.DatasetCacheMisses.Inc()

	table, err := LoadBytes(data, label)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	if len(c.entries) >= cacheMaxEntries {
		c.entries = make(map[uint64]*Table)
	}

	c.entries[key] = table
	c.mu.Unlock()

	return table, false, nil
}

// LoadFile reads path and parses it through the cache.
func (c *Cache) LoadFile(path string) (*Table, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read data file: %w", err)
	}

	return c.Load(data, path)
}

// Invalidate drops all memoized tables.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[uint64]*Table)
	c.mu.Unlock()
}
