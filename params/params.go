// Package params defines parameter markers authored in vertex parameter
// maps — Ref, Expr, and literal/nested values — and the resolution pass
// that erases them against a dependency context, producing a plain
// manifest of cacheable values.
package params

import "github.com/aledsdavies/invariant/cacheable"

// Kind discriminates the arms of ParamValue.
type Kind int

const (
	KindLiteral Kind = iota
	KindRef
	KindExpr
	KindSeq
	KindMap
)

// ParamValue is a node in a vertex's parameter tree: a literal cacheable
// value, a reference to an upstream artifact, a restricted-language
// expression, or a nested sequence/map of further ParamValues. None of
// these are themselves cacheable; resolution strips all markers, producing
// a plain manifest.
type ParamValue struct {
	kind Kind
	lit  cacheable.Value
	ref  string
	expr string
	seq  []ParamValue
	m    map[string]ParamValue
}

// Literal wraps an already-resolved cacheable value.
func Literal(v cacheable.Value) ParamValue { return ParamValue{kind: KindLiteral, lit: v} }

// Ref marks a reference to the upstream artifact bound to name.
func Ref(name string) ParamValue { return ParamValue{kind: KindRef, ref: name} }

// Expr marks a restricted-language expression to be evaluated at
// resolution time.
func Expr(text string) ParamValue { return ParamValue{kind: KindExpr, expr: text} }

// SeqOf constructs a nested sequence of ParamValues.
func SeqOf(items ...ParamValue) ParamValue {
	cp := make([]ParamValue, len(items))
	copy(cp, items)
	return ParamValue{kind: KindSeq, seq: cp}
}

// MapOf constructs a nested map of ParamValues.
func MapOf(m map[string]ParamValue) ParamValue {
	cp := make(map[string]ParamValue, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return ParamValue{kind: KindMap, m: cp}
}

// Kind reports which arm this ParamValue occupies.
func (p ParamValue) Kind() Kind { return p.kind }

// RefName returns the referenced name and whether p is a Ref.
func (p ParamValue) RefName() (string, bool) { return p.ref, p.kind == KindRef }

// ExprText returns the expression text and whether p is an Expr.
func (p ParamValue) ExprText() (string, bool) { return p.expr, p.kind == KindExpr }

// LiteralValue returns the wrapped value and whether p is a Literal.
func (p ParamValue) LiteralValue() (cacheable.Value, bool) { return p.lit, p.kind == KindLiteral }

// SeqItems returns the wrapped slice and whether p is a nested Seq.
func (p ParamValue) SeqItems() ([]ParamValue, bool) { return p.seq, p.kind == KindSeq }

// MapItems returns the wrapped map and whether p is a nested Map.
func (p ParamValue) MapItems() (map[string]ParamValue, bool) { return p.m, p.kind == KindMap }

// FreeVariables returns the set of names referenced by Ref markers or by
// free variables inside Expr markers anywhere in p, recursively. Used for
// the static UndeclaredReference check at vertex-construction time (every
// name here must appear in the vertex's own deps).
func FreeVariables(p ParamValue) (map[string]bool, error) {
	out := make(map[string]bool)
	if err := collectFreeVariables(p, out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectFreeVariables(p ParamValue, out map[string]bool) error {
	switch p.kind {
	case KindRef:
		out[p.ref] = true
		return nil
	case KindExpr:
		vars, err := ExprFreeVariables(p.expr)
		if err != nil {
			return err
		}
		for _, v := range vars {
			out[v] = true
		}
		return nil
	case KindLiteral:
		if str, isStr := p.lit.AsStr(); isStr {
			return collectInterpolationVariables(str, out)
		}
		return nil
	case KindSeq:
		for _, item := range p.seq {
			if err := collectFreeVariables(item, out); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		for _, item := range p.m {
			if err := collectFreeVariables(item, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// ParamMapFreeVariables collects free variables across an entire vertex
// parameter map, including "${...}" interpolation segments nested inside
// literal strings anywhere in the tree (a bare literal string containing an
// interpolation is itself a reference to whatever variable the expression
// names).
func ParamMapFreeVariables(m map[string]ParamValue) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, p := range m {
		if err := collectFreeVariables(p, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
