package params

import (
	"strings"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/params/expr"
)

// Resolve walks p recursively against ctx (the set of artifacts bound for
// the vertex currently being resolved — the caller is responsible for
// restricting ctx to exactly the vertex's declared deps plus any threaded
// context keys, never the whole run's artifact table) and returns the
// erased cacheable value:
//
//   - Ref(name) resolves to ctx[name], or errs.UnknownDependency if absent.
//   - Expr(text) evaluates text against ctx as a restricted expression.
//   - Literal string values containing "${...}" undergo interpolation: if
//     the entire trimmed string is a single "${expr}", the result preserves
//     the expression's native type; otherwise every "${expr}" segment is
//     evaluated, stringified, and substituted into the surrounding text,
//     yielding a Str.
//   - Literal values without interpolation, Seq, and Map all pass through
//     (Seq/Map resolved elementwise).
func Resolve(p ParamValue, ctx map[string]cacheable.Value) (cacheable.Value, error) {
	switch p.kind {
	case KindRef:
		v, ok := ctx[p.ref]
		if !ok {
			return cacheable.Value{}, errs.New(errs.UnknownDependency, "reference to undeclared dependency %q", p.ref)
		}
		return v, nil

	case KindExpr:
		return expr.Eval(p.expr, ctx)

	case KindLiteral:
		if s, ok := p.lit.AsStr(); ok && hasInterpolation(s) {
			return resolveInterpolation(s, ctx)
		}
		return p.lit, nil

	case KindSeq:
		out := make([]cacheable.Value, len(p.seq))
		for i, item := range p.seq {
			v, err := Resolve(item, ctx)
			if err != nil {
				return cacheable.Value{}, err
			}
			out[i] = v
		}
		return cacheable.Seq(out), nil

	case KindMap:
		out := make(map[string]cacheable.Value, len(p.m))
		for k, item := range p.m {
			v, err := Resolve(item, ctx)
			if err != nil {
				return cacheable.Value{}, err
			}
			out[k] = v
		}
		return cacheable.Map(out), nil

	default:
		return cacheable.Value{}, errs.New(errs.TypeMismatch, "unresolvable parameter kind %d", p.kind)
	}
}

// ResolveMap resolves every entry of a vertex parameter map, returning the
// plain manifest passed to fingerprinting and operation invocation.
func ResolveMap(m map[string]ParamValue, ctx map[string]cacheable.Value) (map[string]cacheable.Value, error) {
	out := make(map[string]cacheable.Value, len(m))
	for k, p := range m {
		v, err := Resolve(p, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// resolveInterpolation applies the whole-string-preserves-type rule: a
// string whose trimmed content is exactly one "${expr}" with no
// surrounding literal text evaluates to that expression's native value.
// Any other mix of literal text and "${expr}" segments stringifies every
// expression result and concatenates, always yielding a Str.
func resolveInterpolation(s string, ctx map[string]cacheable.Value) (cacheable.Value, error) {
	trimmed := strings.TrimSpace(s)
	if whole := splitInterpolation(trimmed); len(whole) == 1 && whole[0].isExpr && trimmed == "${"+whole[0].text+"}" {
		return expr.Eval(whole[0].text, ctx)
	}

	segments := splitInterpolation(s)

	var out strings.Builder
	for _, seg := range segments {
		if !seg.isExpr {
			out.WriteString(seg.text)
			continue
		}
		v, err := expr.Eval(seg.text, ctx)
		if err != nil {
			return cacheable.Value{}, err
		}
		out.WriteString(stringify(v))
	}
	return cacheable.Str(out.String()), nil
}

// stringify renders a resolved value for textual substitution into a mixed
// interpolated string.
func stringify(v cacheable.Value) string {
	switch v.Kind() {
	case cacheable.KindStr:
		s, _ := v.AsStr()
		return s
	case cacheable.KindNull:
		return ""
	default:
		return v.String()
	}
}
