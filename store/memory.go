package store

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
)

// Policy selects the in-memory backend's eviction behavior.
type Policy int

const (
	// PolicyUnbounded never evicts; the map grows without limit.
	PolicyUnbounded Policy = iota
	// PolicyLRU evicts the least-recently-used entry once at capacity.
	PolicyLRU
	// PolicyLFU evicts the least-frequently-used entry once at capacity.
	PolicyLFU
)

// DefaultLRUCapacity is used when a bounded policy is requested without an
// explicit capacity.
const DefaultLRUCapacity = 1000

// Memory is an in-memory Store backed by one of the eviction policies.
type Memory struct {
	counters
	policy Policy

	mu        sync.Mutex
	unbounded map[Key]cacheable.Value

	lru *lru.Cache[Key, cacheable.Value]
	lfu *lfuCache
}

// NewMemory constructs an in-memory Store under the given policy. capacity
// is ignored for PolicyUnbounded; for bounded policies, capacity <= 0 falls
// back to DefaultLRUCapacity.
func NewMemory(policy Policy, capacity int) (*Memory, error) {
	m := &Memory{policy: policy}
	switch policy {
	case PolicyUnbounded:
		m.unbounded = make(map[Key]cacheable.Value)
	case PolicyLRU:
		if capacity <= 0 {
			capacity = DefaultLRUCapacity
		}
		c, err := lru.New[Key, cacheable.Value](capacity)
		if err != nil {
			return nil, errs.New(errs.StorageIO, "construct LRU cache: %v", err)
		}
		m.lru = c
	case PolicyLFU:
		if capacity <= 0 {
			capacity = DefaultLRUCapacity
		}
		m.lfu = newLFUCache(capacity)
	default:
		return nil, errs.New(errs.StorageIO, "unknown eviction policy %d", policy)
	}
	return m, nil
}

func (m *Memory) lookup(k Key) (cacheable.Value, bool) {
	switch m.policy {
	case PolicyUnbounded:
		m.mu.Lock()
		defer m.mu.Unlock()
		v, ok := m.unbounded[k]
		return v, ok
	case PolicyLRU:
		return m.lru.Get(k)
	case PolicyLFU:
		return m.lfu.get(k)
	default:
		return cacheable.Value{}, false
	}
}

func (m *Memory) store(k Key, v cacheable.Value) {
	switch m.policy {
	case PolicyUnbounded:
		m.mu.Lock()
		m.unbounded[k] = v
		m.mu.Unlock()
	case PolicyLRU:
		m.lru.Add(k, v)
	case PolicyLFU:
		m.lfu.add(k, v)
	}
}

// Exists reports whether an artifact is stored under (opName, digest).
func (m *Memory) Exists(_ context.Context, opName string, digest fingerprint.Digest) (bool, error) {
	_, ok := m.lookup(Key{OpName: opName, Digest: digest})
	if ok {
		m.hit()
	} else {
		m.miss()
	}
	return ok, nil
}

// Get retrieves the artifact stored under (opName, digest).
func (m *Memory) Get(_ context.Context, opName string, digest fingerprint.Digest) (cacheable.Value, error) {
	v, ok := m.lookup(Key{OpName: opName, Digest: digest})
	if !ok {
		return cacheable.Value{}, errs.New(errs.NotFound, "no artifact for %s/%s", opName, digest)
	}
	return v, nil
}

// Put stores artifact under (opName, digest).
func (m *Memory) Put(_ context.Context, opName string, digest fingerprint.Digest, artifact cacheable.Value) error {
	if !cacheable.IsCacheable(artifact) {
		return errs.New(errs.NotCacheable, "artifact for %s/%s is not cacheable", opName, digest)
	}
	m.store(Key{OpName: opName, Digest: digest}, artifact)
	m.put()
	return nil
}

// Stats returns a snapshot of this store's counters.
func (m *Memory) Stats() Stats { return m.snapshot() }
