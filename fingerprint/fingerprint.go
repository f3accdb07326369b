// Package fingerprint computes the Digest identifying a resolved manifest:
// a manifest is treated as a canonical Map<Str, V> and hashed exactly like
// any other cacheable value, so two manifests that are structurally equal
// as values always produce the same Digest regardless of how they were
// built or which vertex produced them.
package fingerprint

import (
	"github.com/aledsdavies/invariant/assert"
	"github.com/aledsdavies/invariant/cacheable"
)

// Digest is a 64-character lowercase hex SHA-256 string.
type Digest string

// Of computes the Digest of a resolved manifest.
func Of(manifest map[string]cacheable.Value) (Digest, error) {
	h, err := cacheable.StableHash(cacheable.Map(manifest))
	if err != nil {
		return "", err
	}
	assert.Postcondition(len(h) == 64, "stable hash has %d characters, want 64", len(h))
	return Digest(h), nil
}

// String satisfies fmt.Stringer.
func (d Digest) String() string { return string(d) }
