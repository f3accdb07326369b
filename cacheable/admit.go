package cacheable

import (
	"math/big"

	"github.com/aledsdavies/invariant/errs"
)

// IsCacheable reports whether v belongs to the closed cacheable universe.
// Every Value constructed through this package's own constructors already
// is; IsCacheable mainly matters for values that round-tripped through a
// Domain's Field accessor or were built by hand with a zero Value (the
// zero Value has Kind() == KindNull, which is legitimately cacheable).
func IsCacheable(v Value) bool {
	switch v.kind {
	case KindNull, KindBool, KindInt, KindStr, KindDec:
		return true
	case KindSeq:
		for _, e := range v.seq {
			if !IsCacheable(e) {
				return false
			}
		}
		return true
	case KindTup:
		for _, e := range v.tup {
			if !IsCacheable(e) {
				return false
			}
		}
		return true
	case KindMap:
		for _, e := range v.m {
			if !IsCacheable(e) {
				return false
			}
		}
		return true
	case KindDomain:
		return v.domain != nil
	default:
		return false
	}
}

// FromAny converts a Go value produced at a system boundary (an operation
// return value, a caller-supplied context binding) into a cacheable Value,
// recursively validating admission. Floats of any width are rejected with
// errs.FloatForbidden; anything else outside the closed universe is
// rejected with errs.NotCacheable.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case *big.Int:
		return BigInt(x), nil
	case string:
		return Str(x), nil
	case Decimal:
		return Dec(x), nil
	case float32, float64:
		return Value{}, errs.New(errs.FloatForbidden, "float value %v is not cacheable", x)
	case Value:
		if !IsCacheable(x) {
			return Value{}, errs.New(errs.NotCacheable, "value of kind %s is not cacheable", x.kind)
		}
		return x, nil
	case Domain:
		return DomainValue(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			cv, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = cv
		}
		return Seq(items), nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			cv, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = cv
		}
		return Map(m), nil
	default:
		return Value{}, errs.New(errs.NotCacheable, "value of Go type %T is not cacheable", v)
	}
}
