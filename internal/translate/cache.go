package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/michaelzh/mnews/internal/logger"
	"github.com/michaelzh/mnews/internal/metrics"
)

// Cache is the persistent translation memo owned by the Bridge. Values
// may legitimately be "", meaning a translation was attempted and came
// back empty or failed; that short-circuits re-attempts.
//
// Persisted as a flat JSON object keyed "from->to:text". The file loses
// insertion order, so after a load the eviction order is the sorted key
// order; within one process entries evict strictly FIFO.
type Cache struct {
	path       string
	entries    map[string]string
	order      []string
	maxEntries int
	flushEvery int
	pending    int
}

// CacheKey builds the composite key for one language pair and text.
func CacheKey(from, to, text string) string {
	return from + "->" + to + ":" + text
}

// OpenCache loads the cache file. Missing or corrupt files start empty,
// never fail.
func OpenCache(path string, maxEntries, flushEvery int) *Cache {
	c := &Cache{
		path:       path,
		entries:    make(map[string]string),
		maxEntries: maxEntries,
		flushEvery: flushEvery,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("translation cache unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("translation cache corrupt, starting empty", "path", path, "error", err)
		return c
	}

	c.entries = stored
	c.order = make([]string, 0, len(stored))
	for key := range stored {
		c.order = append(c.order, key)
	}
	sort.Strings(c.order)
	return c
}

// Get returns the cached value and whether the key was ever stored.
func (c *Cache) Get(key string) (string, bool) {
	value, ok := c.entries[key]
	if ok {
		metrics.Global.IncrementCacheHits()
	} else {
		metrics.Global.IncrementCacheMisses()
	}
	return value, ok
}

// Put stores a value (empty included) and flushes incrementally every
// flushEvery writes to bound data loss on a crash.
func (c *Cache) Put(key, value string) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value

	c.pending++
	if c.pending >= c.flushEvery {
		if err := c.Flush(); err != nil {
			logger.Warn("incremental cache flush failed", "error", err)
		}
	}
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Flush evicts the oldest entries down to the configured cap and writes
// the cache back as a flat JSON mapping.
func (c *Cache) Flush() error {
	c.evict()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal translation cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	c.pending = 0
	return nil
}

// evict drops entries in insertion order until the cap is respected.
func (c *Cache) evict() {
	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}
