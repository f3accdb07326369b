package assert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/invariant/assert"
)

func TestPreconditionPasses(t *testing.T) {
	require.NotPanics(t, func() {
		assert.Precondition(true, "always true")
	})
}

func TestPreconditionPanics(t *testing.T) {
	require.Panics(t, func() {
		assert.Precondition(false, "never true")
	})
}

func TestInvariantPanics(t *testing.T) {
	require.Panics(t, func() {
		assert.Invariant(1 == 2, "math broke")
	})
}

func TestNotNilPlainNil(t *testing.T) {
	require.Panics(t, func() {
		assert.NotNil(nil, "value")
	})
}

func TestNotNilTypedNilPointer(t *testing.T) {
	var p *int
	require.Panics(t, func() {
		assert.NotNil(p, "p")
	})
}

func TestNotNilAcceptsNonNil(t *testing.T) {
	x := 5
	require.NotPanics(t, func() {
		assert.NotNil(&x, "x")
	})
}
