// Package store defines the artifact storage abstraction used by the
// executor to persist and retrieve memoized operation results, plus the
// concrete backends: in-memory (LRU/LFU/unbounded), on-disk
// content-addressed, a two-tier chain combinator, and a null store for
// tests that must never observe a cache hit.
package store

import (
	"context"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/fingerprint"
)

// Key identifies a stored artifact by the operation that produced it and
// the Digest of the manifest it was invoked with.
type Key struct {
	OpName string
	Digest fingerprint.Digest
}

// Stats is a snapshot of a store's hit/miss/put counters. Every backend,
// including Null, exposes Stats() the same way so callers can assert
// hit-rate invariants uniformly regardless of backend.
type Stats struct {
	Hits   uint64
	Misses uint64
	Puts   uint64
}

// Store is the common artifact storage interface. Exists is the single
// place hit/miss counters move; Get and Put do not duplicate that
// bookkeeping, since the executor always calls Exists before Get on the
// success path.
type Store interface {
	// Exists reports whether an artifact is stored under (opName, digest)
	// and updates the hit/miss counters.
	Exists(ctx context.Context, opName string, digest fingerprint.Digest) (bool, error)

	// Get retrieves the artifact stored under (opName, digest), or fails
	// with errs.NotFound if absent.
	Get(ctx context.Context, opName string, digest fingerprint.Digest) (cacheable.Value, error)

	// Put stores artifact under (opName, digest), idempotently overwriting
	// any existing value at the same content-addressed slot.
	Put(ctx context.Context, opName string, digest fingerprint.Digest, artifact cacheable.Value) error

	// Stats returns a snapshot of this store's counters.
	Stats() Stats
}
