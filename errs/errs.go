// Package errs defines the structural error taxonomy shared across the
// engine. Every error surfaced across a package boundary wraps one of the
// sentinel Kind values below via fmt.Errorf("%w", ...), so callers can test
// for a specific failure with errors.Is while still getting a full causal
// chain from Error().
package errs

import "fmt"

// Kind is a sentinel error identifying one structural failure category.
// Kinds are comparable and meant to be matched with errors.Is, never type
// switched on; callers should not depend on Kind being a concrete type
// beyond the error interface.
type Kind struct {
	name string
}

func (k *Kind) Error() string { return k.name }

// New wraps a Kind with call-site context, preserving errors.Is matching
// against k via %w.
func New(k *Kind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, k)
}

var (
	// FloatForbidden: a float or float-bearing value was encountered in a
	// cacheable position or as an expression result.
	FloatForbidden = &Kind{"FloatForbidden"}

	// NotCacheable: a value outside the cacheable universe was supplied as
	// context, an operation result, or for storage.
	NotCacheable = &Kind{"NotCacheable"}

	// UnknownDependency: a Ref or expression free variable names something
	// not present in deps or context.
	UnknownDependency = &Kind{"UnknownDependency"}

	// UndeclaredReference: a Ref in params names something not in the
	// vertex's own deps.
	UndeclaredReference = &Kind{"UndeclaredReference"}

	// MissingDependency: a dep names nothing in the graph or context.
	MissingDependency = &Kind{"MissingDependency"}

	// UnknownOperation: the referenced operation is not in the registry.
	UnknownOperation = &Kind{"UnknownOperation"}

	// CycleDetected: the dependency relation is cyclic.
	CycleDetected = &Kind{"CycleDetected"}

	// ParseError: the expression text could not be parsed.
	ParseError = &Kind{"ParseError"}

	// TypeMismatch: an expression or builtin received an operand of the
	// wrong type.
	TypeMismatch = &Kind{"TypeMismatch"}

	// MissingParameter: an operation requires a parameter the manifest lacks.
	MissingParameter = &Kind{"MissingParameter"}

	// OperationReturnInvalid: an operation returned a non-cacheable value.
	OperationReturnInvalid = &Kind{"OperationReturnInvalid"}

	// StorageIO: an I/O fault occurred in the disk backend.
	StorageIO = &Kind{"StorageIO"}

	// CorruptData: a decode failure (truncated input, unknown tag, bad
	// length, out-of-order map keys, trailing bytes).
	CorruptData = &Kind{"CorruptData"}

	// NameInUse: a registry name is already bound.
	NameInUse = &Kind{"NameInUse"}

	// NameMissing: a registry name is not bound.
	NameMissing = &Kind{"NameMissing"}

	// NotFound: a store Get on an absent key.
	NotFound = &Kind{"NotFound"}

	// ContextNotCacheable: a context-supplied value fails the cacheable
	// predicate.
	ContextNotCacheable = &Kind{"ContextNotCacheable"}

	// ConfigInvalid: a config file failed schema validation, or a layered
	// config value is out of its valid range after merge.
	ConfigInvalid = &Kind{"ConfigInvalid"}
)
