package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/config"
	"github.com/aledsdavies/invariant/executor"
	"github.com/aledsdavies/invariant/graph"
	"github.com/aledsdavies/invariant/logging"
	"github.com/aledsdavies/invariant/ops/poly"
	"github.com/aledsdavies/invariant/ops/stdlib"
	"github.com/aledsdavies/invariant/params"
	"github.com/aledsdavies/invariant/registry"
	"github.com/aledsdavies/invariant/store"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var scenario string
	var storeBackend string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a bundled example graph and print its artifacts and cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configPath, nil).Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := logging.New(cfg.Log)

			st, err := buildStore(cfg, storeBackend)
			if err != nil {
				return fmt.Errorf("build store: %w", err)
			}

			reg := registry.New()
			if err := reg.RegisterPackage("stdlib", stdlib.Table); err != nil {
				return fmt.Errorf("register stdlib: %w", err)
			}
			if err := reg.RegisterPackage("poly", poly.Table); err != nil {
				return fmt.Errorf("register poly: %w", err)
			}

			g, err := exampleGraph(scenario)
			if err != nil {
				return err
			}

			exec := executor.New(reg, st, logger)
			result, err := exec.Run(context.Background(), g, nil)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			for _, id := range sortedKeys(result) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", id, result[id].String())
			}
			stats := st.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "hits=%d misses=%d puts=%d\n", stats.Hits, stats.Misses, stats.Puts)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to an optional JSON config file")
	cmd.Flags().StringVar(&scenario, "scenario", "commutative", "bundled example graph to run: commutative, polynomial")
	cmd.Flags().StringVar(&storeBackend, "store", "memory", "artifact store backend: memory, disk")
	return cmd
}

func buildStore(cfg config.Config, backend string) (store.Store, error) {
	switch backend {
	case "disk":
		domains := cacheable.NewDomainRegistry()
		poly.RegisterDomain(domains)
		return store.NewDisk(cfg.Store.DiskRoot, domains), nil
	case "memory":
		policy := store.PolicyLRU
		switch cfg.Store.MemoryPolicy {
		case config.StorePolicyUnbounded:
			policy = store.PolicyUnbounded
		case config.StorePolicyLFU:
			policy = store.PolicyLFU
		}
		return store.NewMemory(policy, cfg.Store.MemoryCapacity)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// exampleGraph builds one of the bundled demonstration graphs
// programmatically; this module has no textual graph format (out of
// scope), so a CLI run always executes a graph assembled in Go.
func exampleGraph(name string) (*graph.Graph, error) {
	switch name {
	case "commutative":
		return commutativeGraph(), nil
	case "polynomial":
		return polynomialGraph(), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q (want commutative or polynomial)", name)
	}
}

// commutativeGraph computes add(min(x,y), max(x,y)) two ways; both
// vertices resolve to the identical manifest regardless of argument order,
// so the second is always a cache hit.
func commutativeGraph() *graph.Graph {
	return graph.New(map[string]graph.Vertex{
		"x": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Params: map[string]params.ParamValue{"value": params.Literal(cacheable.Int(7))},
			Cache:  true,
		}},
		"y": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:identity",
			Params: map[string]params.ParamValue{"value": params.Literal(cacheable.Int(3))},
			Cache:  true,
		}},
		"sxy": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:add",
			Deps:   []string{"x", "y"},
			Params: map[string]params.ParamValue{
				"a": params.Expr("min(x, y)"),
				"b": params.Expr("max(x, y)"),
			},
			Cache: true,
		}},
		"syx": {Primitive: &graph.PrimitiveVertex{
			OpName: "stdlib:add",
			Deps:   []string{"x", "y"},
			Params: map[string]params.ParamValue{
				"a": params.Expr("min(y, x)"),
				"b": params.Expr("max(y, x)"),
			},
			Cache: true,
		}},
	})
}

// polynomialGraph computes (p+q)*r two ways (directly, and via the
// distributive law p*r + q*r) and evaluates both at x=5; the two results
// canonicalize to the same artifact.
func polynomialGraph() *graph.Graph {
	coeffs := func(xs ...int64) params.ParamValue {
		items := make([]params.ParamValue, len(xs))
		for i, x := range xs {
			items[i] = params.Literal(cacheable.Int(x))
		}
		return params.SeqOf(items...)
	}

	return graph.New(map[string]graph.Vertex{
		"p": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:from_coefficients",
			Params: map[string]params.ParamValue{"coefficients": coeffs(1, 2, 1)},
			Cache:  true,
		}},
		"q": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:from_coefficients",
			Params: map[string]params.ParamValue{"coefficients": coeffs(3, 0, -1)},
			Cache:  true,
		}},
		"r": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:from_coefficients",
			Params: map[string]params.ParamValue{"coefficients": coeffs(1, 1)},
			Cache:  true,
		}},
		"p_plus_q": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:add",
			Deps:   []string{"p", "q"},
			Params: map[string]params.ParamValue{"a": params.Ref("p"), "b": params.Ref("q")},
			Cache:  true,
		}},
		"left": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:multiply",
			Deps:   []string{"p_plus_q", "r"},
			Params: map[string]params.ParamValue{"a": params.Ref("p_plus_q"), "b": params.Ref("r")},
			Cache:  true,
		}},
		"p_times_r": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:multiply",
			Deps:   []string{"p", "r"},
			Params: map[string]params.ParamValue{"a": params.Ref("p"), "b": params.Ref("r")},
			Cache:  true,
		}},
		"q_times_r": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:multiply",
			Deps:   []string{"q", "r"},
			Params: map[string]params.ParamValue{"a": params.Ref("q"), "b": params.Ref("r")},
			Cache:  true,
		}},
		"right": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:add",
			Deps:   []string{"p_times_r", "q_times_r"},
			Params: map[string]params.ParamValue{"a": params.Ref("p_times_r"), "b": params.Ref("q_times_r")},
			Cache:  true,
		}},
		"left_at_5": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:evaluate",
			Deps:   []string{"left"},
			Params: map[string]params.ParamValue{"poly": params.Ref("left"), "x": params.Literal(cacheable.Int(5))},
			Cache:  true,
		}},
		"right_at_5": {Primitive: &graph.PrimitiveVertex{
			OpName: "poly:evaluate",
			Deps:   []string{"right"},
			Params: map[string]params.ParamValue{"poly": params.Ref("right"), "x": params.Literal(cacheable.Int(5))},
			Cache:  true,
		}},
	})
}

func sortedKeys(m map[string]cacheable.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
