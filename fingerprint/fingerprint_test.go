package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/fingerprint"
)

func TestOfIsDeterministic(t *testing.T) {
	m := map[string]cacheable.Value{
		"a": cacheable.Int(1),
		"b": cacheable.Str("x"),
	}
	d1, err := fingerprint.Of(m)
	require.NoError(t, err)
	d2, err := fingerprint.Of(m)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
	require.Len(t, string(d1), 64)
}

func TestOfIsKeyOrderIndependent(t *testing.T) {
	m1 := map[string]cacheable.Value{"a": cacheable.Int(1), "b": cacheable.Int(2)}
	m2 := map[string]cacheable.Value{"b": cacheable.Int(2), "a": cacheable.Int(1)}
	d1, err := fingerprint.Of(m1)
	require.NoError(t, err)
	d2, err := fingerprint.Of(m2)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestOfDistinguishesDifferentManifests(t *testing.T) {
	m1 := map[string]cacheable.Value{"a": cacheable.Int(1)}
	m2 := map[string]cacheable.Value{"a": cacheable.Int(2)}
	d1, err := fingerprint.Of(m1)
	require.NoError(t, err)
	d2, err := fingerprint.Of(m2)
	require.NoError(t, err)
	require.NotEqual(t, d1, d2)
}

func TestOfCanonicalizesAcrossDependencyOrigin(t *testing.T) {
	// Two manifests built from different upstream dependency names but
	// resolving to the same values must share a Digest and thus a cache
	// slot: the manifest carries only resolved values, never dependency
	// names.
	m1 := map[string]cacheable.Value{"x": cacheable.Int(10)}
	m2 := map[string]cacheable.Value{"x": cacheable.Int(10)}
	d1, err := fingerprint.Of(m1)
	require.NoError(t, err)
	d2, err := fingerprint.Of(m2)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}
