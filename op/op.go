// Package op defines the operation ABI: a host-supplied callable over
// named, cacheable-typed parameters, plus the reflection-based adapters
// that let operation authors write ordinary typed Go functions instead of
// map[string]cacheable.Value handlers.
package op

import (
	"fmt"
	"reflect"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
)

// Op is a deterministic pure function of a manifest (a map of named
// cacheable values) to a single cacheable result.
type Op struct {
	// Params lists the operation's declared parameter names, in the order
	// the executor should report them in MissingParameter errors. A name
	// not in this list but accepted via VarKeyword is passed through
	// unchanged from the manifest.
	Params []string

	// Optional marks which of Params may be absent from the manifest.
	Optional map[string]bool

	// VarKeyword, if true, means the underlying function accepts the
	// manifest's remaining (non-Params) keys as a trailing variadic-by-name
	// argument.
	VarKeyword bool

	fn func(map[string]cacheable.Value) (cacheable.Value, error)
}

// Invoke calls the operation with manifest, validating that every required
// parameter is present before dispatch.
func (o Op) Invoke(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	for _, name := range o.Params {
		if o.Optional[name] {
			continue
		}
		if _, ok := manifest[name]; !ok {
			return cacheable.Value{}, errs.New(errs.MissingParameter, "operation requires parameter %q", name)
		}
	}
	result, err := o.fn(manifest)
	if err != nil {
		return cacheable.Value{}, err
	}
	if !cacheable.IsCacheable(result) {
		return cacheable.Value{}, errs.New(errs.OperationReturnInvalid, "operation returned a non-cacheable value of kind %s", result.Kind())
	}
	return result, nil
}

// OpFunc adapts a raw map[string]cacheable.Value function into an Op with
// the given declared parameter names. Use this when an operation already
// wants manifest-shaped access (e.g. dict_get, or the poly package's
// operations).
func OpFunc(params []string, fn func(map[string]cacheable.Value) (cacheable.Value, error)) Op {
	return Op{Params: params, fn: fn}
}

// VarKeywordFunc adapts a raw function that receives the whole manifest,
// with no fixed parameter list, into an Op (e.g. make_dict).
func VarKeywordFunc(fn func(map[string]cacheable.Value) (cacheable.Value, error)) Op {
	return Op{VarKeyword: true, fn: fn}
}

// FromTyped builds an Op by reflecting over a typed Go function whose
// parameters are each cacheable.Value, int, int64, string, bool or
// cacheable.Decimal, and whose result is (cacheable.Value, error) or a type
// convertible via cacheable.FromAny. paramNames must list one name per
// function parameter, in declaration order.
//
// This lets the bundled example operations identity, add and multiply be
// written as plain typed functions rather than
// map[string]cacheable.Value handlers, while still being dispatched by
// parameter name from the manifest per the operation invocation design.
func FromTyped(paramNames []string, fn any) Op {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic(fmt.Sprintf("op.FromTyped: fn must be a function, got %s", ft.Kind()))
	}
	if ft.NumIn() != len(paramNames) {
		panic(fmt.Sprintf("op.FromTyped: fn has %d parameters but %d names were given", ft.NumIn(), len(paramNames)))
	}

	call := func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
		args := make([]reflect.Value, len(paramNames))
		for i, name := range paramNames {
			v, ok := manifest[name]
			if !ok {
				return cacheable.Value{}, errs.New(errs.MissingParameter, "operation requires parameter %q", name)
			}
			converted, err := convertArg(v, ft.In(i))
			if err != nil {
				return cacheable.Value{}, fmt.Errorf("parameter %q: %w", name, err)
			}
			args[i] = converted
		}
		out := fv.Call(args)
		return convertResult(out)
	}
	return Op{Params: paramNames, fn: call}
}

func convertArg(v cacheable.Value, target reflect.Type) (reflect.Value, error) {
	if target == reflect.TypeOf(cacheable.Value{}) {
		return reflect.ValueOf(v), nil
	}
	switch target.Kind() {
	case reflect.Int, reflect.Int64:
		n, ok := v.AsInt()
		if !ok {
			return reflect.Value{}, errs.New(errs.TypeMismatch, "expected Int, got %s", v.Kind())
		}
		return reflect.ValueOf(n.Int64()).Convert(target), nil
	case reflect.String:
		s, ok := v.AsStr()
		if !ok {
			return reflect.Value{}, errs.New(errs.TypeMismatch, "expected Str, got %s", v.Kind())
		}
		return reflect.ValueOf(s).Convert(target), nil
	case reflect.Bool:
		b, ok := v.AsBool()
		if !ok {
			return reflect.Value{}, errs.New(errs.TypeMismatch, "expected Bool, got %s", v.Kind())
		}
		return reflect.ValueOf(b), nil
	}
	if target == reflect.TypeOf(cacheable.Decimal{}) {
		d, ok := v.AsDec()
		if !ok {
			return reflect.Value{}, errs.New(errs.TypeMismatch, "expected Dec, got %s", v.Kind())
		}
		return reflect.ValueOf(d), nil
	}
	return reflect.Value{}, errs.New(errs.TypeMismatch, "unsupported parameter Go type %s", target)
}

func convertResult(out []reflect.Value) (cacheable.Value, error) {
	if len(out) == 2 {
		if errVal, ok := out[1].Interface().(error); ok && errVal != nil {
			return cacheable.Value{}, errVal
		}
	}
	result := out[0].Interface()
	if v, ok := result.(cacheable.Value); ok {
		return v, nil
	}
	return cacheable.FromAny(result)
}
