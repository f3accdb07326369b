package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
	"github.com/aledsdavies/invariant/store"
)

func TestMemoryUnboundedPutGetExists(t *testing.T) {
	s, err := store.NewMemory(store.PolicyUnbounded, 0)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "stdlib:add", "deadbeef")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "stdlib:add", "deadbeef", cacheable.Int(7)))

	ok, err = s.Exists(ctx, "stdlib:add", "deadbeef")
	require.NoError(t, err)
	require.True(t, ok)

	v, err := s.Get(ctx, "stdlib:add", "deadbeef")
	require.NoError(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(7), i.Int64())

	stats := s.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, uint64(1), stats.Puts)
}

func TestMemoryGetMissingReturnsNotFound(t *testing.T) {
	s, err := store.NewMemory(store.PolicyUnbounded, 0)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "op", fingerprint.Digest("nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.NotFound))
}

func TestMemoryPutAcceptsZeroValueAsNull(t *testing.T) {
	s, err := store.NewMemory(store.PolicyUnbounded, 0)
	require.NoError(t, err)
	// The zero Value is KindNull, which is cacheable; Put must not reject it.
	require.NoError(t, s.Put(context.Background(), "op", "digest", cacheable.Value{}))
}

func TestMemoryLRUEvicts(t *testing.T) {
	s, err := store.NewMemory(store.PolicyLRU, 2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "op", "a", cacheable.Int(1)))
	require.NoError(t, s.Put(ctx, "op", "b", cacheable.Int(2)))
	require.NoError(t, s.Put(ctx, "op", "c", cacheable.Int(3)))

	ok, _ := s.Exists(ctx, "op", "a")
	require.False(t, ok, "oldest entry should have been evicted")

	ok, _ = s.Exists(ctx, "op", "c")
	require.True(t, ok)
}

func TestMemoryLFUEvictsLeastUsed(t *testing.T) {
	s, err := store.NewMemory(store.PolicyLFU, 2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "op", "a", cacheable.Int(1)))
	require.NoError(t, s.Put(ctx, "op", "b", cacheable.Int(2)))

	// Access "a" repeatedly so "b" becomes the least-frequently-used entry.
	_, _ = s.Get(ctx, "op", "a")
	_, _ = s.Get(ctx, "op", "a")

	require.NoError(t, s.Put(ctx, "op", "c", cacheable.Int(3)))

	ok, _ := s.Exists(ctx, "op", "b")
	require.False(t, ok, "least-frequently-used entry should have been evicted")
	ok, _ = s.Exists(ctx, "op", "a")
	require.True(t, ok)
}

func TestMemoryDefaultLRUCapacityWhenUnspecified(t *testing.T) {
	s, err := store.NewMemory(store.PolicyLRU, 0)
	require.NoError(t, err)
	require.NotNil(t, s)
}
