package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/executor"
	"github.com/aledsdavies/invariant/fingerprint"
	"github.com/aledsdavies/invariant/graph"
	"github.com/aledsdavies/invariant/ops/stdlib"
	"github.com/aledsdavies/invariant/params"
	"github.com/aledsdavies/invariant/registry"
	"github.com/aledsdavies/invariant/store"
)

func TestRunRejectsCycle(t *testing.T) {
	exec, _ := newTestExecutor(t)

	g := graph.New(map[string]graph.Vertex{
		"a": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Deps:   []string{"b"},
			Params: map[string]params.ParamValue{"value": params.Ref("b")},
		}},
		"b": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Deps:   []string{"a"},
			Params: map[string]params.ParamValue{"value": params.Ref("a")},
		}},
	})

	_, err := exec.Run(context.Background(), g, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.CycleDetected))
}

func TestRunRejectsUndeclaredReference(t *testing.T) {
	exec, _ := newTestExecutor(t)

	g := graph.New(map[string]graph.Vertex{
		"x": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Params: map[string]params.ParamValue{"value": params.Literal(cacheable.Int(1))},
		}},
		// y references x via Ref but never declares it as a dependency.
		"y": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Params: map[string]params.ParamValue{"value": params.Ref("x")},
		}},
	})

	_, err := exec.Run(context.Background(), g, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UndeclaredReference))
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	exec, _ := newTestExecutor(t)

	g := graph.New(map[string]graph.Vertex{
		"x": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:does_not_exist",
			Params: map[string]params.ParamValue{"value": params.Literal(cacheable.Int(1))},
		}},
	})

	_, err := exec.Run(context.Background(), g, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownOperation))
}

// TestRunWithDiskStoreSurvivesAcrossExecutors simulates the cold-cache then
// warm-cache lifecycle against a real filesystem-backed Store: a second
// Executor built on the same disk root reuses the first run's artifact
// without invoking the operation again.
func TestRunWithDiskStoreSurvivesAcrossExecutors(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterPackage("stdlib", stdlib.Table))

	root := t.TempDir()
	domains := cacheable.NewDomainRegistry()

	g := graph.New(map[string]graph.Vertex{
		"x": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:add",
			Params: map[string]params.ParamValue{"a": params.Literal(cacheable.Int(2)), "b": params.Literal(cacheable.Int(40))},
			Cache:  true,
		}},
	})

	disk1 := store.NewDisk(root, domains)
	exec1 := executor.New(reg, disk1, nil)
	result1, err := exec1.Run(context.Background(), g, nil)
	require.NoError(t, err)
	i1, _ := result1["x"].AsInt()
	require.Equal(t, int64(42), i1.Int64())
	require.Equal(t, uint64(1), disk1.Stats().Misses)

	disk2 := store.NewDisk(root, domains)
	exec2 := executor.New(reg, disk2, nil)
	result2, err := exec2.Run(context.Background(), g, nil)
	require.NoError(t, err)
	i2, _ := result2["x"].AsInt()
	require.Equal(t, int64(42), i2.Int64())
	require.Equal(t, uint64(1), disk2.Stats().Hits)
	require.Equal(t, uint64(0), disk2.Stats().Misses)
}

// TestRunWithChainStorePromotesL2HitIntoL1 confirms a chained Store
// transparently participates in the executor's normal exists/get flow,
// promoting an L2-only artifact up into L1 on first access.
func TestRunWithChainStorePromotesL2HitIntoL1(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterPackage("stdlib", stdlib.Table))

	l1, err := store.NewMemory(store.PolicyUnbounded, 0)
	require.NoError(t, err)
	l2, err := store.NewMemory(store.PolicyUnbounded, 0)
	require.NoError(t, err)

	// Pre-seed l2 directly, bypassing l1, to simulate an artifact that was
	// produced and cached by a prior run against a shared remote tier.
	digest, err := fingerprint.Of(map[string]cacheable.Value{"a": cacheable.Int(4), "b": cacheable.Int(5)})
	require.NoError(t, err)
	require.NoError(t, l2.Put(context.Background(), "stdlib:add", digest, cacheable.Int(9)))

	chain := store.NewChain(l1, l2)
	exec := executor.New(reg, chain, nil)

	g := graph.New(map[string]graph.Vertex{
		"x": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:add",
			Params: map[string]params.ParamValue{"a": params.Literal(cacheable.Int(4)), "b": params.Literal(cacheable.Int(5))},
			Cache:  true,
		}},
	})

	result, err := exec.Run(context.Background(), g, nil)
	require.NoError(t, err)
	i, _ := result["x"].AsInt()
	require.Equal(t, int64(9), i.Int64(), "must read the pre-seeded L2 artifact rather than recompute")

	existsInL1, err := l1.Exists(context.Background(), "stdlib:add", digest)
	require.NoError(t, err)
	require.True(t, existsInL1, "the L2 hit must be promoted into L1")
}
