package prices

import (
	"sync"
	"time"
)

// Entry is one cached USD price observation for a mint. The JSON shape is
// kept compatible with the serialized form the browser terminal writes under
// the same storage key.
type Entry struct {
	USD        float64 `json:"usd"`
	ObservedAt int64   `json:"timestamp"` // unix millis
}

// Expired reports whether the entry fell out of its freshness window.
func (e Entry) Expired(ttl time.Duration) bool {
	return time.Now().UnixMilli()-e.ObservedAt >= ttl.Milliseconds()
}

// Cache is an in-memory mint->price table with TTL-based freshness. Stale
// entries are never served as fresh; they linger until PruneExpired or an
// overwriting merge.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Get returns the entry for address only if it is still fresh.
func (c *Cache) Get(address string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[address]
	if !ok || e.Expired(c.ttl) {
		return Entry{}, false
	}
	return e, true
}

// Lookup returns the entry for address regardless of freshness.
func (c *Cache) Lookup(address string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[address]
	return e, ok
}

func (c *Cache) Put(address string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = e
}

// Merge overwrites entries by key. Fresh fetch results are always newer than
// what they replace, so overwrite-by-key is the merge.
func (c *Cache) Merge(entries map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for addr, e := range entries {
		c.entries[addr] = e
	}
}

// PruneExpired removes every stale entry and returns how many were dropped.
func (c *Cache) PruneExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for addr, e := range c.entries {
		if e.Expired(c.ttl) {
			delete(c.entries, addr)
			removed++
		}
	}
	return removed
}

// Snapshot returns a copy of the full table.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Entry, len(c.entries))
	for addr, e := range c.entries {
		out[addr] = e
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
