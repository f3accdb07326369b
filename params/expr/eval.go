package expr

import (
	"math/big"

	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
)

// Environment holds nothing but exists to mirror the familiar
// Environment/Program shape of a compiled-expression API: construct once,
// Compile many expression strings against it, Eval each Program against a
// per-call variable binding. Unlike a general expression environment this
// one declares no global functions or variables beyond the fixed builtins
// below — there is nothing to configure.
type Environment struct{}

// NewEnvironment constructs an Environment.
func NewEnvironment() *Environment { return &Environment{} }

// Program is a parsed, not-yet-evaluated expression.
type Program struct {
	root Node
	src  string
}

// Compile parses text into a reusable Program.
func (e *Environment) Compile(text string) (Program, error) {
	node, err := Parse(text)
	if err != nil {
		return Program{}, errs.New(errs.ParseError, "%v", err)
	}
	return Program{root: node, src: text}, nil
}

// Eval evaluates the program against vars (variable name -> artifact).
func (p Program) Eval(vars map[string]cacheable.Value) (cacheable.Value, error) {
	return evalNode(p.root, vars)
}

// Eval is a convenience one-shot: parse text and evaluate it immediately.
func Eval(text string, vars map[string]cacheable.Value) (cacheable.Value, error) {
	env := NewEnvironment()
	prog, err := env.Compile(text)
	if err != nil {
		return cacheable.Value{}, err
	}
	return prog.Eval(vars)
}

// FreeVariables returns the distinct top-level identifiers referenced by
// text (the base of every Ident/FieldAccess chain), used by the static
// UndeclaredReference check.
func FreeVariables(text string) ([]string, error) {
	node, err := Parse(text)
	if err != nil {
		return nil, errs.New(errs.ParseError, "%v", err)
	}
	seen := make(map[string]bool)
	collectIdents(node, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out, nil
}

func collectIdents(n Node, out map[string]bool) {
	switch x := n.(type) {
	case Ident:
		out[x.Name] = true
	case FieldAccess:
		collectIdents(x.Base, out)
	case BinaryOp:
		collectIdents(x.Left, out)
		collectIdents(x.Right, out)
	case Call:
		for _, a := range x.Args {
			collectIdents(a, out)
		}
	}
}

func evalNode(n Node, vars map[string]cacheable.Value) (cacheable.Value, error) {
	switch x := n.(type) {
	case IntLit:
		i, ok := new(big.Int).SetString(x.Text, 10)
		if !ok {
			return cacheable.Value{}, errs.New(errs.ParseError, "invalid integer literal %q", x.Text)
		}
		return cacheable.BigInt(i), nil
	case StringLit:
		return cacheable.Str(x.Value), nil
	case BoolLit:
		return cacheable.Bool(x.Value), nil
	case NullLit:
		return cacheable.Null, nil
	case Ident:
		v, ok := vars[x.Name]
		if !ok {
			return cacheable.Value{}, errs.New(errs.UnknownDependency, "undefined variable %q", x.Name)
		}
		return v, nil
	case FieldAccess:
		base, err := evalNode(x.Base, vars)
		if err != nil {
			return cacheable.Value{}, err
		}
		fv, ok := base.Field(x.Name)
		if !ok {
			return cacheable.Value{}, errs.New(errs.TypeMismatch, "no field %q on value of kind %s", x.Name, base.Kind())
		}
		return fv, nil
	case BinaryOp:
		return evalBinary(x, vars)
	case Call:
		return evalCall(x, vars)
	default:
		return cacheable.Value{}, errs.New(errs.ParseError, "unsupported expression node %T", n)
	}
}

func evalBinary(b BinaryOp, vars map[string]cacheable.Value) (cacheable.Value, error) {
	left, err := evalNode(b.Left, vars)
	if err != nil {
		return cacheable.Value{}, err
	}
	right, err := evalNode(b.Right, vars)
	if err != nil {
		return cacheable.Value{}, err
	}
	switch b.Op {
	case "+", "-", "*":
		return arith(b.Op, left, right)
	case "==", "!=", "<", "<=", ">", ">=":
		return compare(b.Op, left, right)
	default:
		return cacheable.Value{}, errs.New(errs.ParseError, "unknown operator %q", b.Op)
	}
}

func arith(op string, left, right cacheable.Value) (cacheable.Value, error) {
	// String concatenation only supports "+".
	if ls, lok := left.AsStr(); lok {
		rs, rok := right.AsStr()
		if !rok {
			return cacheable.Value{}, errs.New(errs.TypeMismatch, "cannot apply %q between Str and %s", op, right.Kind())
		}
		if op != "+" {
			return cacheable.Value{}, errs.New(errs.TypeMismatch, "operator %q is not defined for Str", op)
		}
		return cacheable.Str(ls + rs), nil
	}

	li, liok := left.AsInt()
	ri, riok := right.AsInt()
	ld, ldok := left.AsDec()
	rd, rdok := right.AsDec()

	if liok && riok {
		var result big.Int
		switch op {
		case "+":
			result.Add(li, ri)
		case "-":
			result.Sub(li, ri)
		case "*":
			result.Mul(li, ri)
		}
		return cacheable.BigInt(&result), nil
	}

	if (ldok || liok) && (rdok || riok) {
		if !ldok {
			ld = cacheable.NewDecimalFromInt(li.Int64())
		}
		if !rdok {
			rd = cacheable.NewDecimalFromInt(ri.Int64())
		}
		switch op {
		case "+":
			return cacheable.Dec(ld.Add(rd)), nil
		case "-":
			return cacheable.Dec(ld.Sub(rd)), nil
		case "*":
			return cacheable.Dec(ld.Mul(rd)), nil
		}
	}

	return cacheable.Value{}, errs.New(errs.TypeMismatch, "operator %q is not defined between %s and %s", op, left.Kind(), right.Kind())
}

func compare(op string, left, right cacheable.Value) (cacheable.Value, error) {
	if op == "==" || op == "!=" {
		eq := left.Equal(right)
		if op == "!=" {
			eq = !eq
		}
		return cacheable.Bool(eq), nil
	}

	cmp, err := orderCompare(left, right)
	if err != nil {
		return cacheable.Value{}, err
	}
	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return cacheable.Bool(result), nil
}

// orderCompare returns -1, 0, or 1 for Int/Dec (cross-compared by
// promoting Int to Dec) and Str (lexicographic on UTF-8 code points, i.e.
// Go's native byte-wise string comparison since Go strings are UTF-8
// encoded byte sequences).
func orderCompare(left, right cacheable.Value) (int, error) {
	if ls, lok := left.AsStr(); lok {
		rs, rok := right.AsStr()
		if !rok {
			return 0, errs.New(errs.TypeMismatch, "cannot order Str against %s", right.Kind())
		}
		switch {
		case ls < rs:
			return -1, nil
		case ls > rs:
			return 1, nil
		default:
			return 0, nil
		}
	}

	li, liok := left.AsInt()
	ri, riok := right.AsInt()
	ld, ldok := left.AsDec()
	rd, rdok := right.AsDec()

	if liok && riok {
		return li.Cmp(ri), nil
	}
	if (ldok || liok) && (rdok || riok) {
		if !ldok {
			ld = cacheable.NewDecimalFromInt(li.Int64())
		}
		if !rdok {
			rd = cacheable.NewDecimalFromInt(ri.Int64())
		}
		return ld.Cmp(rd), nil
	}
	return 0, errs.New(errs.TypeMismatch, "cannot order %s against %s", left.Kind(), right.Kind())
}

func evalCall(c Call, vars map[string]cacheable.Value) (cacheable.Value, error) {
	args := make([]cacheable.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := evalNode(a, vars)
		if err != nil {
			return cacheable.Value{}, err
		}
		args[i] = v
	}
	switch c.Func {
	case "decimal":
		if len(args) != 1 {
			return cacheable.Value{}, errs.New(errs.ParseError, "decimal() takes exactly one argument")
		}
		return callDecimal(args[0])
	case "min":
		if len(args) != 2 {
			return cacheable.Value{}, errs.New(errs.ParseError, "min() takes exactly two arguments")
		}
		return callMinMax(args[0], args[1], true)
	case "max":
		if len(args) != 2 {
			return cacheable.Value{}, errs.New(errs.ParseError, "max() takes exactly two arguments")
		}
		return callMinMax(args[0], args[1], false)
	default:
		return cacheable.Value{}, errs.New(errs.ParseError, "unknown function %q", c.Func)
	}
}

// valueForCompare extracts the value to compare for a composite with a
// "value" field (used by decimal()/min()/max() per the design's coercion
// rule), falling back to v itself.
func valueForCompare(v cacheable.Value) cacheable.Value {
	if fv, ok := v.Field("value"); ok {
		return fv
	}
	return v
}

func callDecimal(v cacheable.Value) (cacheable.Value, error) {
	target := valueForCompare(v)
	if d, ok := target.AsDec(); ok {
		return cacheable.Dec(d), nil
	}
	if i, ok := target.AsInt(); ok {
		d, err := cacheable.NewDecimalFromString(i.String())
		if err != nil {
			return cacheable.Value{}, err
		}
		return cacheable.Dec(d), nil
	}
	if s, ok := target.AsStr(); ok {
		d, err := cacheable.NewDecimalFromString(s)
		if err != nil {
			return cacheable.Value{}, errs.New(errs.TypeMismatch, "decimal(): invalid numeric string %q", s)
		}
		return cacheable.Dec(d), nil
	}
	return cacheable.Value{}, errs.New(errs.TypeMismatch, "decimal(): cannot coerce value of kind %s", v.Kind())
}

func callMinMax(a, b cacheable.Value, wantMin bool) (cacheable.Value, error) {
	cmp, err := orderCompare(valueForCompare(a), valueForCompare(b))
	if err != nil {
		return cacheable.Value{}, err
	}
	if wantMin {
		if cmp <= 0 {
			return a, nil
		}
		return b, nil
	}
	if cmp >= 0 {
		return a, nil
	}
	return b, nil
}
