package params_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/params"
)

func TestResolveLiteralPassesThrough(t *testing.T) {
	v, err := params.Resolve(params.Literal(cacheable.Int(42)), nil)
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), i.Int64())
}

func TestResolveRef(t *testing.T) {
	ctx := map[string]cacheable.Value{"x": cacheable.Str("hello")}
	v, err := params.Resolve(params.Ref("x"), ctx)
	require.NoError(t, err)
	s, ok := v.AsStr()
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestResolveRefMissing(t *testing.T) {
	_, err := params.Resolve(params.Ref("missing"), map[string]cacheable.Value{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownDependency))
}

func TestResolveExpr(t *testing.T) {
	ctx := map[string]cacheable.Value{"a": cacheable.Int(3), "b": cacheable.Int(4)}
	v, err := params.Resolve(params.Expr("a + b"), ctx)
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(7), i.Int64())
}

func TestResolveWholeStringInterpolationPreservesType(t *testing.T) {
	ctx := map[string]cacheable.Value{"x": cacheable.Int(7)}
	v, err := params.Resolve(params.Literal(cacheable.Str("${x}")), ctx)
	require.NoError(t, err)
	require.Equal(t, cacheable.KindInt, v.Kind())
	i, _ := v.AsInt()
	require.Equal(t, int64(7), i.Int64())
}

func TestResolveWholeStringInterpolationWithSurroundingWhitespacePreservesType(t *testing.T) {
	ctx := map[string]cacheable.Value{"x": cacheable.Int(7)}
	v, err := params.Resolve(params.Literal(cacheable.Str(" ${x} ")), ctx)
	require.NoError(t, err)
	require.Equal(t, cacheable.KindInt, v.Kind())
}

func TestResolveMixedInterpolationStringifies(t *testing.T) {
	ctx := map[string]cacheable.Value{"x": cacheable.Int(7)}
	v, err := params.Resolve(params.Literal(cacheable.Str("value=${x}!")), ctx)
	require.NoError(t, err)
	s, ok := v.AsStr()
	require.True(t, ok)
	require.Equal(t, "value=7!", s)
}

func TestResolveLiteralStringWithoutInterpolationPassesThrough(t *testing.T) {
	v, err := params.Resolve(params.Literal(cacheable.Str("plain")), nil)
	require.NoError(t, err)
	s, ok := v.AsStr()
	require.True(t, ok)
	require.Equal(t, "plain", s)
}

func TestResolveSeqAndMap(t *testing.T) {
	ctx := map[string]cacheable.Value{"x": cacheable.Int(1), "y": cacheable.Int(2)}
	p := params.MapOf(map[string]params.ParamValue{
		"items": params.SeqOf(params.Ref("x"), params.Ref("y"), params.Literal(cacheable.Int(3))),
	})
	v, err := params.Resolve(p, ctx)
	require.NoError(t, err)
	m, ok := v.AsMap()
	require.True(t, ok)
	items, ok := m["items"].AsSeq()
	require.True(t, ok)
	require.Len(t, items, 3)
	i0, _ := items[0].AsInt()
	i1, _ := items[1].AsInt()
	i2, _ := items[2].AsInt()
	require.Equal(t, int64(1), i0.Int64())
	require.Equal(t, int64(2), i1.Int64())
	require.Equal(t, int64(3), i2.Int64())
}

func TestResolveMapFull(t *testing.T) {
	ctx := map[string]cacheable.Value{"dep": cacheable.Int(5)}
	manifest, err := params.ResolveMap(map[string]params.ParamValue{
		"a": params.Ref("dep"),
		"b": params.Literal(cacheable.Str("static")),
		"c": params.Expr("dep * 2"),
	}, ctx)
	require.NoError(t, err)
	require.Len(t, manifest, 3)
	a, _ := manifest["a"].AsInt()
	require.Equal(t, int64(5), a.Int64())
	b, _ := manifest["b"].AsStr()
	require.Equal(t, "static", b)
	c, _ := manifest["c"].AsInt()
	require.Equal(t, int64(10), c.Int64())
}

func TestResolveMapPropagatesError(t *testing.T) {
	_, err := params.ResolveMap(map[string]params.ParamValue{
		"bad": params.Ref("nope"),
	}, map[string]cacheable.Value{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownDependency))
}

func TestParamMapFreeVariablesFindsNestedInterpolation(t *testing.T) {
	m := map[string]params.ParamValue{
		"nested": params.SeqOf(params.Literal(cacheable.Str("hello ${name}"))),
	}
	vars, err := params.ParamMapFreeVariables(m)
	require.NoError(t, err)
	require.True(t, vars["name"])
}
