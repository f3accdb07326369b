package store

import (
	"context"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
)

// Null always reports a miss, discards every Put, and raises on Get. Its
// Stats() never moves — intended for correctness tests where caching must
// not be exercised at all, the all-zero counters being itself an assertion
// tests can make.
type Null struct{}

// NewNull constructs a Null store.
func NewNull() Null { return Null{} }

// Exists always reports false.
func (Null) Exists(context.Context, string, fingerprint.Digest) (bool, error) { return false, nil }

// Get always fails with errs.NotFound.
func (Null) Get(_ context.Context, opName string, digest fingerprint.Digest) (cacheable.Value, error) {
	return cacheable.Value{}, errs.New(errs.NotFound, "null store never holds %s/%s", opName, digest)
}

// Put discards artifact.
func (Null) Put(context.Context, string, fingerprint.Digest, cacheable.Value) error { return nil }

// Stats always returns the zero value.
func (Null) Stats() Stats { return Stats{} }
