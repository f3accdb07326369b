// Package executor drives a graph to completion: validate, detect cycles,
// compute topological order, then walk each vertex through
// resolve-fingerprint-hit-or-invoke-persist against a Store and Registry.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aledsdavies/invariant/assert"
	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
	"github.com/aledsdavies/invariant/graph"
	"github.com/aledsdavies/invariant/params"
	"github.com/aledsdavies/invariant/registry"
	"github.com/aledsdavies/invariant/store"
)

// Executor orchestrates one or more graph runs against a fixed Registry and
// Store. Neither dependency is global: every Executor is constructed with
// its own, so a host program can run independent engines side by side.
type Executor struct {
	Registry *registry.Registry
	Store    store.Store
	Logger   *slog.Logger
}

// New constructs an Executor. A nil logger falls back to slog.Default().
func New(reg *registry.Registry, st store.Store, logger *slog.Logger) *Executor {
	assert.NotNil(reg, "registry")
	assert.NotNil(st, "store")
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{Registry: reg, Store: st, Logger: logger}
}

// Run validates g against the externally-supplied bindings, then executes
// every vertex in topological order, returning the artifact table
// restricted to g's own vertex ids.
func (e *Executor) Run(ctx context.Context, g *graph.Graph, external map[string]cacheable.Value) (map[string]cacheable.Value, error) {
	contextKeys := make(map[string]bool, len(external))
	for k := range external {
		contextKeys[k] = true
	}

	if err := graph.Validate(g, e.Registry, contextKeys); err != nil {
		return nil, err
	}
	for k, v := range external {
		if !cacheable.IsCacheable(v) {
			return nil, errs.New(errs.ContextNotCacheable, "context value %q is not cacheable", k)
		}
	}
	if err := graph.DetectCycle(g); err != nil {
		return nil, err
	}
	order, err := graph.TopoSort(g)
	if err != nil {
		return nil, err
	}
	assert.Invariant(len(order) == len(g.Vertices),
		"topological order has %d vertices, want %d", len(order), len(g.Vertices))

	artifacts := make(map[string]cacheable.Value, len(external)+len(order))
	for k, v := range external {
		artifacts[k] = v
	}

	started := time.Now()
	hits, misses := 0, 0
	for _, id := range order {
		v := g.Vertices[id]
		artifact, hit, err := e.runVertex(ctx, id, v, artifacts)
		if err != nil {
			return nil, err
		}
		artifacts[id] = artifact
		if hit {
			hits++
		} else {
			misses++
		}
	}

	e.Logger.Debug("run complete",
		"vertices", len(order),
		"hits", hits,
		"misses", misses,
		"elapsed", time.Since(started))

	result := make(map[string]cacheable.Value, len(order))
	for _, id := range order {
		result[id] = artifacts[id]
	}
	return result, nil
}

func (e *Executor) runVertex(ctx context.Context, id string, v graph.Vertex, artifacts map[string]cacheable.Value) (cacheable.Value, bool, error) {
	if v.Subgraph != nil {
		return e.runSubgraph(ctx, id, v.Subgraph, artifacts)
	}
	return e.runPrimitive(ctx, id, v.Primitive, artifacts)
}

// restrictContext narrows artifacts down to exactly the named deps, so
// resolution never sees the whole run's artifact table — only what the
// vertex actually declared.
func restrictContext(deps []string, artifacts map[string]cacheable.Value) map[string]cacheable.Value {
	out := make(map[string]cacheable.Value, len(deps))
	for _, d := range deps {
		if v, ok := artifacts[d]; ok {
			out[d] = v
		}
	}
	return out
}

func (e *Executor) runPrimitive(ctx context.Context, id string, pv *graph.PrimitiveVertex, artifacts map[string]cacheable.Value) (cacheable.Value, bool, error) {
	depCtx := restrictContext(pv.Deps, artifacts)
	manifest, err := params.ResolveMap(pv.Params, depCtx)
	if err != nil {
		return cacheable.Value{}, false, err
	}

	digest, err := fingerprint.Of(manifest)
	if err != nil {
		return cacheable.Value{}, false, err
	}

	exists := false
	if pv.Cache {
		exists, err = e.Store.Exists(ctx, pv.OpName, digest)
		if err != nil {
			return cacheable.Value{}, false, err
		}
	}
	if exists {
		artifact, err := e.Store.Get(ctx, pv.OpName, digest)
		if err != nil {
			return cacheable.Value{}, false, err
		}
		e.Logger.Debug("vertex", "vertex", id, "op_name", pv.OpName, "digest", digest, "hit", true)
		return artifact, true, nil
	}

	o, err := e.Registry.Get(pv.OpName)
	if err != nil {
		return cacheable.Value{}, false, err
	}
	artifact, err := o.Invoke(manifest)
	if err != nil {
		return cacheable.Value{}, false, err
	}
	if pv.Cache {
		if err := e.Store.Put(ctx, pv.OpName, digest, artifact); err != nil {
			return cacheable.Value{}, false, err
		}
	}
	e.Logger.Debug("vertex", "vertex", id, "op_name", pv.OpName, "digest", digest, "hit", false)
	return artifact, false, nil
}

// runSubgraph resolves the subgraph vertex's own params against the
// parent's artifacts, then recursively runs the inner graph with those
// resolved params as its external context. Because the inner run shares
// this Executor's Store, inner vertices memoize under their own
// (op_name, digest) exactly as any top-level vertex would — including
// across unrelated parent subgraphs that happen to resolve to the same
// inner inputs. No separate whole-subgraph memoization layer is needed on
// top of that.
func (e *Executor) runSubgraph(ctx context.Context, id string, sv *graph.SubgraphVertex, artifacts map[string]cacheable.Value) (cacheable.Value, bool, error) {
	depCtx := restrictContext(sv.Deps, artifacts)
	innerContext, err := params.ResolveMap(sv.Params, depCtx)
	if err != nil {
		return cacheable.Value{}, false, err
	}

	innerResult, err := e.Run(ctx, sv.InnerGraph, innerContext)
	if err != nil {
		return cacheable.Value{}, false, err
	}

	out, ok := innerResult[sv.Output]
	if !ok {
		return cacheable.Value{}, false, errs.New(errs.NotFound, "subgraph %q output vertex %q not produced by inner graph", id, sv.Output)
	}
	e.Logger.Debug("vertex", "vertex", id, "op_name", "<subgraph>", "output", sv.Output)
	return out, false, nil
}
