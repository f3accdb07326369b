// Package graph defines vertices and graphs of pure operations, plus the
// resolver that validates them, detects cycles, and produces a topological
// execution order.
package graph

import "github.com/aledsdavies/invariant/params"

// Vertex is either a primitive operation invocation or a subgraph
// expansion. Exactly one of Primitive or Subgraph is non-nil.
type Vertex struct {
	Primitive *PrimitiveVertex
	Subgraph  *SubgraphVertex
}

// PrimitiveVertex invokes a single registered operation.
type PrimitiveVertex struct {
	OpName string
	Params map[string]params.ParamValue
	Deps   []string
	// Cache, when false, forces execution and suppresses persistence even
	// if the resulting manifest already has a stored artifact.
	Cache bool
}

// SubgraphVertex expands into an inner Graph, receiving its resolved
// params as that graph's external context.
type SubgraphVertex struct {
	Params     map[string]params.ParamValue
	Deps       []string
	InnerGraph *Graph
	Output     string
}

// Deps returns the vertex's declared dependency names regardless of
// variant.
func (v Vertex) Deps() []string {
	if v.Primitive != nil {
		return v.Primitive.Deps
	}
	if v.Subgraph != nil {
		return v.Subgraph.Deps
	}
	return nil
}

// ParamMap returns the vertex's param map regardless of variant.
func (v Vertex) ParamMap() map[string]params.ParamValue {
	if v.Primitive != nil {
		return v.Primitive.Params
	}
	if v.Subgraph != nil {
		return v.Subgraph.Params
	}
	return nil
}

// Graph is a mapping from vertex id to vertex.
type Graph struct {
	Vertices map[string]Vertex
}

// New constructs a Graph from a vertex map. The map is copied.
func New(vertices map[string]Vertex) *Graph {
	cp := make(map[string]Vertex, len(vertices))
	for k, v := range vertices {
		cp[k] = v
	}
	return &Graph{Vertices: cp}
}
