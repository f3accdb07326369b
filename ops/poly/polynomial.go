// Package poly bundles the Polynomial domain value and the polynomial
// algebra operations used to exercise the engine's cross-operation
// canonicalization: distinct but algebraically equivalent expressions
// (e.g. the distributive law) converge on a common cached artifact only if
// the underlying values compare and hash equal, which is exactly what
// Polynomial's canonical-coefficient representation guarantees.
package poly

import (
	"crypto/sha256"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
)

// TypeName identifies Polynomial to the codec's DomainRegistry.
const TypeName = "invariant.poly.Polynomial"

// Polynomial is a cacheable polynomial over the integers, represented as
// its coefficient sequence (index i holds the coefficient of x^i).
// Canonical form strips trailing zero coefficients so that two
// algebraically equal polynomials are always represented identically,
// never merely equal-after-simplification.
type Polynomial struct {
	coefficients []int64
}

// New constructs a Polynomial from coeffs, stripping trailing zeros. A
// fully-zero input canonicalizes to the single coefficient [0].
func New(coeffs []int64) Polynomial {
	end := len(coeffs)
	for end > 0 && coeffs[end-1] == 0 {
		end--
	}
	if end == 0 {
		return Polynomial{coefficients: []int64{0}}
	}
	cp := make([]int64, end)
	copy(cp, coeffs[:end])
	return Polynomial{coefficients: cp}
}

// Coefficients returns a copy of the polynomial's coefficient sequence.
func (p Polynomial) Coefficients() []int64 {
	return append([]int64(nil), p.coefficients...)
}

// TypeName identifies this Go type to the codec's DomainRegistry.
func (Polynomial) TypeName() string { return TypeName }

var cborCanonical = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// MarshalStream returns the polynomial's internal stream form: a canonical
// CBOR encoding of its coefficient sequence, distinct from (and nested
// inside) the outer cacheable codec's own tagged-union framing.
func (p Polynomial) MarshalStream() ([]byte, error) {
	b, err := cborCanonical.Marshal(p.coefficients)
	if err != nil {
		return nil, errs.New(errs.StorageIO, "marshal polynomial stream: %v", err)
	}
	return b, nil
}

// StableHash is SHA-256 of the polynomial's own canonical stream form.
func (p Polynomial) StableHash() [32]byte {
	stream, err := p.MarshalStream()
	if err != nil {
		// MarshalStream only fails on a CBOR encoder bug; coefficients are
		// always a plain []int64.
		panic(err)
	}
	return sha256.Sum256(stream)
}

// Decode reconstructs a Polynomial from the bytes previously produced by
// MarshalStream. Registered under TypeName in a cacheable.DomainRegistry so
// the codec can decode Polynomial artifacts it did not itself construct.
func Decode(stream []byte) (cacheable.Domain, error) {
	var coeffs []int64
	if err := cbor.Unmarshal(stream, &coeffs); err != nil {
		return nil, errs.New(errs.CorruptData, "decode polynomial stream: %v", err)
	}
	return New(coeffs), nil
}

// RegisterDomain registers Polynomial's decoder with reg.
func RegisterDomain(reg *cacheable.DomainRegistry) {
	reg.Register(TypeName, Decode)
}
