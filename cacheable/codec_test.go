package cacheable_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
)

func mustDec(t *testing.T, s string) cacheable.Decimal {
	t.Helper()
	d, err := cacheable.NewDecimalFromString(s)
	require.NoError(t, err)
	return d
}

func roundTrip(t *testing.T, v cacheable.Value) cacheable.Value {
	t.Helper()
	data, err := cacheable.EncodeBytes(v)
	require.NoError(t, err)
	decoded, err := cacheable.DecodeBytes(data, nil)
	require.NoError(t, err)
	return decoded
}

func TestRoundTripScalars(t *testing.T) {
	values := []cacheable.Value{
		cacheable.Null,
		cacheable.Bool(true),
		cacheable.Bool(false),
		cacheable.Int(0),
		cacheable.Int(-7),
		cacheable.Int(9223372036854775807),
		cacheable.Str(""),
		cacheable.Str("hello, 世界"),
		cacheable.Dec(mustDec(t, "3.140")),
	}
	for _, v := range values {
		got := roundTrip(t, v)
		require.True(t, v.Equal(got), "round trip mismatch for %v", v)
	}
}

func TestRoundTripBignum(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	v := cacheable.BigInt(huge)
	got := roundTrip(t, v)
	require.True(t, v.Equal(got))
}

func TestRoundTripContainers(t *testing.T) {
	seq := cacheable.Seq([]cacheable.Value{cacheable.Int(1), cacheable.Str("a"), cacheable.Null})
	tup := cacheable.Tup([]cacheable.Value{cacheable.Int(1), cacheable.Bool(true)})
	m := cacheable.Map(map[string]cacheable.Value{
		"b": cacheable.Int(2),
		"a": cacheable.Int(1),
		"c": cacheable.Seq([]cacheable.Value{cacheable.Str("nested")}),
	})
	for _, v := range []cacheable.Value{seq, tup, m} {
		got := roundTrip(t, v)
		require.True(t, v.Equal(got))
	}
}

func TestCanonicalMapKeyOrderingIsDeterministic(t *testing.T) {
	m1 := cacheable.Map(map[string]cacheable.Value{"b": cacheable.Int(2), "a": cacheable.Int(1)})
	m2 := cacheable.Map(map[string]cacheable.Value{"a": cacheable.Int(1), "b": cacheable.Int(2)})
	b1, err := cacheable.EncodeBytes(m1)
	require.NoError(t, err)
	b2, err := cacheable.EncodeBytes(m2)
	require.NoError(t, err)
	require.Equal(t, b1, b2, "construction order must not affect canonical encoding")
}

func TestHashDeterminism(t *testing.T) {
	v := cacheable.Map(map[string]cacheable.Value{
		"x": cacheable.Int(7),
		"y": cacheable.Seq([]cacheable.Value{cacheable.Str("a"), cacheable.Str("b")}),
	})
	h1, err := cacheable.StableHash(v)
	require.NoError(t, err)
	h2, err := cacheable.StableHash(v)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestHashPermutationInvariance(t *testing.T) {
	m1 := cacheable.Map(map[string]cacheable.Value{"a": cacheable.Int(1), "b": cacheable.Int(2), "c": cacheable.Int(3)})
	m2 := cacheable.Map(map[string]cacheable.Value{"c": cacheable.Int(3), "a": cacheable.Int(1), "b": cacheable.Int(2)})
	h1, err := cacheable.StableHash(m1)
	require.NoError(t, err)
	h2, err := cacheable.StableHash(m2)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	full, err := cacheable.EncodeBytes(cacheable.Str("hello"))
	require.NoError(t, err)
	_, err = cacheable.DecodeBytes(full[:len(full)-2], nil)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := cacheable.DecodeBytes([]byte("xxxx"), nil)
	require.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	full, err := cacheable.EncodeBytes(cacheable.Int(1))
	require.NoError(t, err)
	_, err = cacheable.DecodeBytes(append(full, 0xAB), nil)
	require.Error(t, err)
}

func TestDecodeRejectsOutOfOrderMapKeys(t *testing.T) {
	m := cacheable.Map(map[string]cacheable.Value{"a": cacheable.Int(1), "b": cacheable.Int(2)})
	data, err := cacheable.EncodeBytes(m)
	require.NoError(t, err)
	// Rewrite the first key from 'a' to 'z' (keys then read z, b) to break
	// canonical order while keeping every length field consistent.
	for i := range data {
		if data[i] == 'a' {
			data[i] = 'z'
			break
		}
	}
	_, err = cacheable.DecodeBytes(data, nil)
	require.Error(t, err)
}

func TestValueEqualityIgnoresGoCmpButStructurallyMatches(t *testing.T) {
	a := cacheable.Seq([]cacheable.Value{cacheable.Int(1), cacheable.Int(2)})
	b := cacheable.Seq([]cacheable.Value{cacheable.Int(1), cacheable.Int(2)})
	require.True(t, a.Equal(b))
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Fatalf("unexpected diff: %s", diff)
	}
}
