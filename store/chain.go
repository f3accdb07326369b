package store

import (
	"context"
	"errors"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
)

// Chain combines two stores into a two-tier cache, typically memory (L1)
// over disk (L2). Exists consults L1 first and falls through to L2 on
// miss; Get promotes an L2 hit into L1 before returning.
type Chain struct {
	counters
	l1, l2 Store
}

// NewChain constructs a Chain over l1 (consulted first) and l2.
func NewChain(l1, l2 Store) *Chain {
	return &Chain{l1: l1, l2: l2}
}

// Exists reports whether (opName, digest) is present in either tier.
func (c *Chain) Exists(ctx context.Context, opName string, digest fingerprint.Digest) (bool, error) {
	ok, err := c.l1.Exists(ctx, opName, digest)
	if err != nil {
		return false, err
	}
	if ok {
		c.hit()
		return true, nil
	}
	ok, err = c.l2.Exists(ctx, opName, digest)
	if err != nil {
		return false, err
	}
	if ok {
		c.hit()
	} else {
		c.miss()
	}
	return ok, nil
}

// Get retrieves the artifact from L1 if present, otherwise from L2,
// promoting an L2 hit into L1 before returning.
func (c *Chain) Get(ctx context.Context, opName string, digest fingerprint.Digest) (cacheable.Value, error) {
	v, err := c.l1.Get(ctx, opName, digest)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, errs.NotFound) {
		return cacheable.Value{}, err
	}

	v, err = c.l2.Get(ctx, opName, digest)
	if err != nil {
		return cacheable.Value{}, err
	}
	if putErr := c.l1.Put(ctx, opName, digest, v); putErr != nil {
		return cacheable.Value{}, putErr
	}
	return v, nil
}

// Put writes artifact to both tiers.
func (c *Chain) Put(ctx context.Context, opName string, digest fingerprint.Digest, artifact cacheable.Value) error {
	if err := c.l1.Put(ctx, opName, digest, artifact); err != nil {
		return err
	}
	if err := c.l2.Put(ctx, opName, digest, artifact); err != nil {
		return err
	}
	c.put()
	return nil
}

// Stats returns this chain's own hit/miss/put counters, observed at the
// combinator level rather than summed from the underlying tiers.
func (c *Chain) Stats() Stats { return c.snapshot() }
