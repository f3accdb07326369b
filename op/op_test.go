package op_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/op"
)

func TestFromTypedDispatchesByParamNameAndConvertsArgs(t *testing.T) {
	add := op.FromTyped([]string{"a", "b"}, func(a, b int64) (int64, error) {
		return a + b, nil
	})

	result, err := add.Invoke(map[string]cacheable.Value{
		"a": cacheable.Int(2),
		"b": cacheable.Int(3),
	})
	require.NoError(t, err)
	n, ok := result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(5), n.Int64())
}

func TestFromTypedAcceptsRawCacheableValueParams(t *testing.T) {
	identity := op.FromTyped([]string{"value"}, func(v cacheable.Value) (cacheable.Value, error) {
		return v, nil
	})

	result, err := identity.Invoke(map[string]cacheable.Value{"value": cacheable.Str("hi")})
	require.NoError(t, err)
	s, ok := result.AsStr()
	require.True(t, ok)
	require.Equal(t, "hi", s)
}

func TestFromTypedRejectsTypeMismatch(t *testing.T) {
	add := op.FromTyped([]string{"a", "b"}, func(a, b int64) (int64, error) {
		return a + b, nil
	})

	_, err := add.Invoke(map[string]cacheable.Value{
		"a": cacheable.Str("not a number"),
		"b": cacheable.Int(3),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.TypeMismatch))
}

func TestFromTypedRejectsMissingParameter(t *testing.T) {
	add := op.FromTyped([]string{"a", "b"}, func(a, b int64) (int64, error) {
		return a + b, nil
	})

	_, err := add.Invoke(map[string]cacheable.Value{"a": cacheable.Int(2)})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.MissingParameter))
}

func TestInvokeSkipsValidationForOptionalParams(t *testing.T) {
	o := op.OpFunc([]string{"value", "fallback"}, func(m map[string]cacheable.Value) (cacheable.Value, error) {
		if v, ok := m["value"]; ok {
			return v, nil
		}
		return m["fallback"], nil
	})
	o.Optional = map[string]bool{"fallback": true}

	result, err := o.Invoke(map[string]cacheable.Value{"value": cacheable.Int(9)})
	require.NoError(t, err)
	n, ok := result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(9), n.Int64())
}

func TestInvokeRequiresNonOptionalParams(t *testing.T) {
	o := op.OpFunc([]string{"value", "fallback"}, func(m map[string]cacheable.Value) (cacheable.Value, error) {
		return m["value"], nil
	})
	o.Optional = map[string]bool{"fallback": true}

	_, err := o.Invoke(map[string]cacheable.Value{"fallback": cacheable.Int(0)})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.MissingParameter))
}

func TestVarKeywordFuncReceivesEntireManifest(t *testing.T) {
	o := op.VarKeywordFunc(func(m map[string]cacheable.Value) (cacheable.Value, error) {
		return cacheable.Int(int64(len(m))), nil
	})

	result, err := o.Invoke(map[string]cacheable.Value{
		"x": cacheable.Int(1),
		"y": cacheable.Int(2),
		"z": cacheable.Int(3),
	})
	require.NoError(t, err)
	n, ok := result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(3), n.Int64())
}

func TestInvokeRejectsNonCacheableResult(t *testing.T) {
	o := op.OpFunc(nil, func(map[string]cacheable.Value) (cacheable.Value, error) {
		// A Domain value wrapping a nil Domain is the one way to construct
		// a Value whose Kind() is non-cacheable without reaching outside
		// the package: IsCacheable treats KindDomain with a nil domain as
		// inadmissible.
		return cacheable.DomainValue(nil), nil
	})

	_, err := o.Invoke(map[string]cacheable.Value{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.OperationReturnInvalid))
}

func TestFromTypedPropagatesFunctionError(t *testing.T) {
	boom := errors.New("boom")
	o := op.FromTyped([]string{"a"}, func(a int64) (int64, error) {
		return 0, boom
	})

	_, err := o.Invoke(map[string]cacheable.Value{"a": cacheable.Int(1)})
	require.ErrorIs(t, err, boom)
}
