// Package cacheable defines the closed universe of values the engine may
// pass between operations, plus their canonical binary encoding and stable
// hash.
//
// A Value is a tagged union: Null, Bool, Int, Str, Dec, Seq, Tup, Map, or
// Domain. There is deliberately no float arm — IEEE-754 values cannot be
// represented as a Value at all, which is what makes float exclusion a
// property of the type rather than a runtime check scattered through the
// codebase. The one place a float can still arrive is from the boundary
// (an operation's return value, a context binding) expressed as Go `any`;
// FromAny performs the recursive admission check described in §3/§4.1 of
// the design and returns errs.FloatForbidden or errs.NotCacheable rather
// than silently coercing.
package cacheable

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/aledsdavies/invariant/errs"
)

// Kind discriminates the arms of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindStr
	KindDec
	KindSeq
	KindTup
	KindMap
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindStr:
		return "str"
	case KindDec:
		return "dec"
	case KindSeq:
		return "seq"
	case KindTup:
		return "tup"
	case KindMap:
		return "map"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Domain is the interface a user-extensible composite value must implement
// to occupy the Domain arm of Value. TypeName must be stable across
// processes and uniquely identify the Go type to the decoder (the codec
// consults a DomainRegistry keyed by this name at decode time).
type Domain interface {
	// TypeName is the fully qualified type identifier encoded alongside
	// the value's own stream form.
	TypeName() string

	// StableHash returns this value's own deterministic stable hash (not
	// necessarily SHA-256 of anything in particular). Value.Equal compares
	// Domain values by it; the codec encodes MarshalStream and does not
	// consult it.
	StableHash() [32]byte

	// MarshalStream returns this value's own canonical byte encoding. Two
	// structurally equal Domain values of the same type must marshal to
	// byte-identical streams.
	MarshalStream() ([]byte, error)
}

// DomainDecoder decodes a Domain value's stream form, given the bytes
// previously produced by its MarshalStream. Implementations are registered
// by type name in a DomainRegistry so the codec can reconstruct concrete
// types on decode.
type DomainDecoder func(stream []byte) (Domain, error)

// Value is a single member of the cacheable universe.
type Value struct {
	kind   Kind
	b      bool
	i      *big.Int
	s      string
	d      Decimal
	seq    []Value
	tup    []Value
	m      map[string]Value
	domain Domain
}

// Null is the sole Null value.
var Null = Value{kind: KindNull}

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs an Int value from an int64.
func Int(i int64) Value { return Value{kind: KindInt, i: big.NewInt(i)} }

// BigInt constructs an Int value from an arbitrary-precision integer. The
// argument is copied; callers retain ownership of n.
func BigInt(n *big.Int) Value {
	assertNotNilBigInt(n)
	return Value{kind: KindInt, i: new(big.Int).Set(n)}
}

// Str constructs a Str value.
func Str(s string) Value { return Value{kind: KindStr, s: s} }

// Dec constructs a Dec value from a Decimal.
func Dec(d Decimal) Value { return Value{kind: KindDec, d: d} }

// Seq constructs a Seq value from a slice of Values. The slice is copied.
func Seq(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSeq, seq: cp}
}

// Tup constructs a Tup value from a slice of Values. The slice is copied.
func Tup(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindTup, tup: cp}
}

// Map constructs a Map value from a Go map. The map is copied; key
// uniqueness is guaranteed by the Go map itself, order is not preserved
// (the codec imposes lexicographic order on encode).
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// DomainValue wraps a Domain implementation as a cacheable Value.
func DomainValue(d Domain) Value {
	assertNotNilDomain(d)
	return Value{kind: KindDomain, domain: d}
}

// Kind reports which arm of the union this Value occupies.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the wrapped bool and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the wrapped integer and whether v is an Int.
func (v Value) AsInt() (*big.Int, bool) {
	if v.kind != KindInt {
		return nil, false
	}
	return v.i, true
}

// AsStr returns the wrapped string and whether v is a Str.
func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

// AsDec returns the wrapped decimal and whether v is a Dec.
func (v Value) AsDec() (Decimal, bool) { return v.d, v.kind == KindDec }

// AsSeq returns the wrapped slice and whether v is a Seq.
func (v Value) AsSeq() ([]Value, bool) { return v.seq, v.kind == KindSeq }

// AsTup returns the wrapped slice and whether v is a Tup.
func (v Value) AsTup() ([]Value, bool) { return v.tup, v.kind == KindTup }

// AsMap returns the wrapped map and whether v is a Map.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// AsDomain returns the wrapped Domain and whether v is a Domain.
func (v Value) AsDomain() (Domain, bool) { return v.domain, v.kind == KindDomain }

// Field looks up a named field on a composite value: a Map key, or (for a
// Domain value implementing FieldAccessor) a named attribute. Used by the
// expression language's field-access syntax and by decimal()/min()/max()'s
// "composite with a value field" coercion rule.
func (v Value) Field(name string) (Value, bool) {
	switch v.kind {
	case KindMap:
		fv, ok := v.m[name]
		return fv, ok
	case KindDomain:
		if fa, ok := v.domain.(FieldAccessor); ok {
			return fa.Field(name)
		}
	}
	return Value{}, false
}

// FieldAccessor lets a Domain type expose named attributes to the
// expression language's field-access syntax and to decimal()/min()/max().
type FieldAccessor interface {
	Field(name string) (Value, bool)
}

// MapKeys returns the sorted keys of a Map value, or nil if v is not a Map.
func (v Value) MapKeys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality between two cacheable values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i.Cmp(other.i) == 0
	case KindStr:
		return v.s == other.s
	case KindDec:
		return v.d.Equal(other.d)
	case KindSeq:
		return equalSlice(v.seq, other.seq)
	case KindTup:
		return equalSlice(v.tup, other.tup)
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, vv := range v.m {
			ov, ok := other.m[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	case KindDomain:
		return v.domain.TypeName() == other.domain.TypeName() &&
			v.domain.StableHash() == other.domain.StableHash()
	default:
		return false
	}
}

func equalSlice(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String renders a debug representation; not used for hashing or encoding.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return v.i.String()
	case KindStr:
		return fmt.Sprintf("%q", v.s)
	case KindDec:
		return v.d.String()
	case KindSeq:
		return fmt.Sprintf("%v", v.seq)
	case KindTup:
		return fmt.Sprintf("%v", v.tup)
	case KindMap:
		return fmt.Sprintf("%v", v.m)
	case KindDomain:
		return fmt.Sprintf("%s(...)", v.domain.TypeName())
	default:
		return "<invalid>"
	}
}

func assertNotNilBigInt(n *big.Int) {
	if n == nil {
		panic(errs.New(errs.NotCacheable, "nil *big.Int passed to cacheable.BigInt"))
	}
}

func assertNotNilDomain(d Domain) {
	if d == nil {
		panic(errs.New(errs.NotCacheable, "nil Domain passed to cacheable.DomainValue"))
	}
}
