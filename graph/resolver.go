package graph

import (
	"sort"

	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/params"
	"github.com/aledsdavies/invariant/registry"
)

// OpChecker reports whether an operation name is registered. *registry.Registry
// satisfies this directly; it is narrowed to an interface here so validation
// does not force every caller to construct a full Registry.
type OpChecker interface {
	Has(name string) bool
}

// Validate checks g against reg and the live set of externally-supplied
// context keys, per the three static rules: every dependency must resolve
// to either an in-graph vertex or a context key (MissingDependency), every
// primitive vertex's operation must be registered (UnknownOperation), and
// every Ref/Expr free variable in a vertex's params must be declared in
// that vertex's own deps (UndeclaredReference).
func Validate(g *Graph, reg OpChecker, contextKeys map[string]bool) error {
	for id, v := range g.Vertices {
		declared := make(map[string]bool, len(v.Deps()))
		for _, d := range v.Deps() {
			declared[d] = true
			if !g.hasVertex(d) && !contextKeys[d] {
				return errs.New(errs.MissingDependency, "vertex %q depends on %q, which is neither a vertex nor a context key", id, d)
			}
		}

		if v.Primitive != nil && !reg.Has(v.Primitive.OpName) {
			return errs.New(errs.UnknownOperation, "vertex %q references unregistered operation %q", id, v.Primitive.OpName)
		}

		free, err := params.ParamMapFreeVariables(v.ParamMap())
		if err != nil {
			return err
		}
		for name := range free {
			if !declared[name] {
				return errs.New(errs.UndeclaredReference, "vertex %q references %q, which is not in its declared deps", id, name)
			}
		}
	}
	return nil
}

func (g *Graph) hasVertex(id string) bool {
	_, ok := g.Vertices[id]
	return ok
}

// color states for the three-color DFS cycle detector.
type color int

const (
	white color = iota
	gray
	black
)

// DetectCycle runs a three-color DFS restricted to in-graph edges (a
// dependency naming a context key, not a vertex, contributes no edge) and
// fails with errs.CycleDetected on the first back-edge found. Vertices are
// visited in ascending id order so the reported cycle is reproducible.
func DetectCycle(g *Graph) error {
	colors := make(map[string]color, len(g.Vertices))
	ids := sortedIDs(g)

	var visit func(id string) error
	visit = func(id string) error {
		colors[id] = gray
		deps := g.Vertices[id].Deps()
		sortedDeps := append([]string(nil), deps...)
		sort.Strings(sortedDeps)
		for _, d := range sortedDeps {
			if !g.hasVertex(d) {
				continue // context key, not an in-graph edge
			}
			switch colors[d] {
			case gray:
				return errs.New(errs.CycleDetected, "dependency cycle detected through vertex %q", d)
			case white:
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		colors[id] = black
		return nil
	}

	for _, id := range ids {
		if colors[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoSort returns vertex ids in dependency order using Kahn's algorithm
// over in-graph edges (context-key dependencies contribute no edge). Ties
// among simultaneously-ready vertices break by ascending id, so the
// returned order is reproducible across runs of the same graph.
func TopoSort(g *Graph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Vertices))
	dependents := make(map[string][]string, len(g.Vertices))

	for id := range g.Vertices {
		inDegree[id] = 0
	}
	for id, v := range g.Vertices {
		for _, d := range v.Deps() {
			if !g.hasVertex(d) {
				continue
			}
			inDegree[id]++
			dependents[d] = append(dependents[d], id)
		}
	}

	ready := make([]string, 0, len(g.Vertices))
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Vertices))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := append([]string(nil), dependents[id]...)
		sort.Strings(next)
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(g.Vertices) {
		return nil, errs.New(errs.CycleDetected, "topological sort could not order all vertices; a cycle remains")
	}
	return order, nil
}

func sortedIDs(g *Graph) []string {
	ids := make([]string, 0, len(g.Vertices))
	for id := range g.Vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
