package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/params/expr"
)

func evalInt(t *testing.T, src string, vars map[string]cacheable.Value) int64 {
	t.Helper()
	v, err := expr.Eval(src, vars)
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok, "expected Int, got %s", v.Kind())
	return i.Int64()
}

func TestArithmeticAndPrecedence(t *testing.T) {
	require.Equal(t, int64(14), evalInt(t, "2 + 3 * 4", nil))
	require.Equal(t, int64(20), evalInt(t, "(2 + 3) * 4", nil))
	require.Equal(t, int64(-1), evalInt(t, "2 - 3", nil))
}

func TestVariableAndFieldAccess(t *testing.T) {
	vars := map[string]cacheable.Value{
		"x": cacheable.Map(map[string]cacheable.Value{"value": cacheable.Int(9)}),
	}
	v, err := expr.Eval("x.value + 1", vars)
	require.NoError(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(10), i.Int64())
}

func TestMinMax(t *testing.T) {
	vars := map[string]cacheable.Value{"a": cacheable.Int(3), "b": cacheable.Int(7)}
	got, err := expr.Eval("min(a, b)", vars)
	require.NoError(t, err)
	i, _ := got.AsInt()
	require.Equal(t, int64(3), i.Int64())

	got, err = expr.Eval("max(a, b)", vars)
	require.NoError(t, err)
	i, _ = got.AsInt()
	require.Equal(t, int64(7), i.Int64())
}

func TestDecimalBuiltin(t *testing.T) {
	got, err := expr.Eval(`decimal("3.140")`, nil)
	require.NoError(t, err)
	d, ok := got.AsDec()
	require.True(t, ok)
	require.Equal(t, "3.140", d.String())
}

func TestComparisons(t *testing.T) {
	v, err := expr.Eval(`"apple" < "banana"`, nil)
	require.NoError(t, err)
	b, _ := v.AsBool()
	require.True(t, b)

	v, err = expr.Eval("5 == 5", nil)
	require.NoError(t, err)
	b, _ = v.AsBool()
	require.True(t, b)
}

func TestUndefinedVariable(t *testing.T) {
	_, err := expr.Eval("y + 1", map[string]cacheable.Value{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.UnknownDependency))
}

func TestParseErrorOnInvalidSyntax(t *testing.T) {
	_, err := expr.Eval("1 +", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ParseError))
}

func TestFreeVariables(t *testing.T) {
	vars, err := expr.FreeVariables("min(a.value, b) + c")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, vars)
}

func TestStringConcatenation(t *testing.T) {
	v, err := expr.Eval(`"foo" + "bar"`, nil)
	require.NoError(t, err)
	s, _ := v.AsStr()
	require.Equal(t, "foobar", s)
}

func TestTypeMismatchOnBadOperator(t *testing.T) {
	_, err := expr.Eval(`"foo" - "bar"`, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.TypeMismatch))
}
