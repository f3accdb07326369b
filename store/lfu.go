package store

import (
	"sync"

	"github.com/aledsdavies/invariant/cacheable"
)

// lfuCache is a minimal least-frequently-used cache. hashicorp/golang-lru/v2
// ships LRU but no LFU variant, so this one policy falls back to a small
// hand-rolled implementation; eviction scans all entries for the minimum
// frequency rather than maintaining a frequency heap, which is fine at the
// cache sizes this engine targets and keeps the policy's bookkeeping
// legible.
type lfuCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[Key]*lfuEntry
}

type lfuEntry struct {
	value cacheable.Value
	freq  int
}

func newLFUCache(capacity int) *lfuCache {
	return &lfuCache{capacity: capacity, entries: make(map[Key]*lfuEntry)}
}

func (c *lfuCache) get(k Key) (cacheable.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return cacheable.Value{}, false
	}
	e.freq++
	return e.value, true
}

func (c *lfuCache) add(k Key, v cacheable.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		e.value = v
		e.freq++
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[k] = &lfuEntry{value: v, freq: 1}
}

func (c *lfuCache) evictLocked() {
	var victim Key
	first := true
	minFreq := 0
	for k, e := range c.entries {
		if first || e.freq < minFreq {
			victim = k
			minFreq = e.freq
			first = false
		}
	}
	delete(c.entries, victim)
}
