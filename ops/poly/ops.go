package poly

import (
	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/op"
)

func polyParam(manifest map[string]cacheable.Value, name string) (Polynomial, error) {
	v, ok := manifest[name]
	if !ok {
		return Polynomial{}, errs.New(errs.MissingParameter, "operation requires parameter %q", name)
	}
	d, ok := v.AsDomain()
	if !ok {
		return Polynomial{}, errs.New(errs.TypeMismatch, "parameter %q must be a Polynomial, got %s", name, v.Kind())
	}
	p, ok := d.(Polynomial)
	if !ok {
		return Polynomial{}, errs.New(errs.TypeMismatch, "parameter %q must be a Polynomial, got domain type %s", name, d.TypeName())
	}
	return p, nil
}

func intParam(manifest map[string]cacheable.Value, name string) (int64, error) {
	v, ok := manifest[name]
	if !ok {
		return 0, errs.New(errs.MissingParameter, "operation requires parameter %q", name)
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, errs.New(errs.TypeMismatch, "parameter %q must be an Int, got %s", name, v.Kind())
	}
	return n.Int64(), nil
}

// FromCoefficients builds a Polynomial domain value from a Seq of Int
// coefficients.
var FromCoefficients = op.OpFunc([]string{"coefficients"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	v, ok := manifest["coefficients"]
	if !ok {
		return cacheable.Value{}, errs.New(errs.MissingParameter, "operation requires parameter %q", "coefficients")
	}
	items, ok := v.AsSeq()
	if !ok {
		return cacheable.Value{}, errs.New(errs.TypeMismatch, "coefficients must be a Seq, got %s", v.Kind())
	}
	coeffs := make([]int64, len(items))
	for i, item := range items {
		n, ok := item.AsInt()
		if !ok {
			return cacheable.Value{}, errs.New(errs.TypeMismatch, "coefficient %d must be an Int, got %s", i, item.Kind())
		}
		coeffs[i] = n.Int64()
	}
	return cacheable.DomainValue(New(coeffs)), nil
})

// Add returns the polynomial sum a + b.
var Add = op.OpFunc([]string{"a", "b"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	a, err := polyParam(manifest, "a")
	if err != nil {
		return cacheable.Value{}, err
	}
	b, err := polyParam(manifest, "b")
	if err != nil {
		return cacheable.Value{}, err
	}
	ac, bc := a.Coefficients(), b.Coefficients()
	n := len(ac)
	if len(bc) > n {
		n = len(bc)
	}
	result := make([]int64, n)
	for i := 0; i < n; i++ {
		var av, bv int64
		if i < len(ac) {
			av = ac[i]
		}
		if i < len(bc) {
			bv = bc[i]
		}
		result[i] = av + bv
	}
	return cacheable.DomainValue(New(result)), nil
})

// Multiply returns the polynomial product a * b (convolution of
// coefficient sequences).
var Multiply = op.OpFunc([]string{"a", "b"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	a, err := polyParam(manifest, "a")
	if err != nil {
		return cacheable.Value{}, err
	}
	b, err := polyParam(manifest, "b")
	if err != nil {
		return cacheable.Value{}, err
	}
	ac, bc := a.Coefficients(), b.Coefficients()
	result := make([]int64, len(ac)+len(bc)-1)
	for i, av := range ac {
		for j, bv := range bc {
			result[i+j] += av * bv
		}
	}
	return cacheable.DomainValue(New(result)), nil
})

// Scale returns poly with every coefficient multiplied by scalar.
var Scale = op.OpFunc([]string{"poly", "scalar"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	p, err := polyParam(manifest, "poly")
	if err != nil {
		return cacheable.Value{}, err
	}
	scalar, err := intParam(manifest, "scalar")
	if err != nil {
		return cacheable.Value{}, err
	}
	coeffs := p.Coefficients()
	result := make([]int64, len(coeffs))
	for i, c := range coeffs {
		result[i] = c * scalar
	}
	return cacheable.DomainValue(New(result)), nil
})

// Derivative returns the derivative of poly.
var Derivative = op.OpFunc([]string{"poly"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	p, err := polyParam(manifest, "poly")
	if err != nil {
		return cacheable.Value{}, err
	}
	coeffs := p.Coefficients()
	if len(coeffs) <= 1 {
		return cacheable.DomainValue(New([]int64{0})), nil
	}
	result := make([]int64, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		result[i-1] = coeffs[i] * int64(i)
	}
	return cacheable.DomainValue(New(result)), nil
})

// Evaluate evaluates poly at x using Horner's method.
var Evaluate = op.OpFunc([]string{"poly", "x"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	p, err := polyParam(manifest, "poly")
	if err != nil {
		return cacheable.Value{}, err
	}
	x, err := intParam(manifest, "x")
	if err != nil {
		return cacheable.Value{}, err
	}
	coeffs := p.Coefficients()
	var result int64
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result*x + coeffs[i]
	}
	return cacheable.Int(result), nil
})

// Table is the "poly:" operation package, registered in one call via
// registry.RegisterPackage.
var Table = map[string]op.Op{
	"from_coefficients": FromCoefficients,
	"add":               Add,
	"multiply":          Multiply,
	"scale":             Scale,
	"derivative":        Derivative,
	"evaluate":          Evaluate,
}
