package store

import "sync"

// counters is embedded by every backend except Null to provide the shared
// hit/miss/put bookkeeping behind Stats().
type counters struct {
	mu     sync.Mutex
	hits   uint64
	misses uint64
	puts   uint64
}

func (c *counters) hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *counters) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *counters) put() {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
}

func (c *counters) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Puts: c.puts}
}
