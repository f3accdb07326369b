package cacheable

import (
	"github.com/shopspring/decimal"

	"github.com/aledsdavies/invariant/errs"
)

// Decimal is an arbitrary-precision decimal that preserves its canonical
// string form (scale included) across encode/decode. It wraps
// shopspring/decimal, which is already present in the dependency graph of
// this corpus, rather than hand-rolling fixed-point arithmetic over
// math/big.
type Decimal struct {
	d decimal.Decimal
}

// NewDecimalFromString parses a decimal literal (e.g. "3.140"). The scale
// implied by trailing zeros is preserved, matching the canonical string
// form requirement of the codec.
func NewDecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, errs.New(errs.TypeMismatch, "invalid decimal literal %q: %v", s, err)
	}
	return Decimal{d: d}, nil
}

// NewDecimalFromInt constructs an exact integral Decimal.
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

// String returns the canonical string form used by the codec.
func (d Decimal) String() string {
	if exp := d.d.Exponent(); exp < 0 {
		return d.d.StringFixed(-exp)
	}
	return d.d.String()
}

// Equal compares two decimals by value (not by string form, "1.0" and
// "1.00" are the same); the codec preserves the original scale
// separately via String, so round-tripping still reproduces the exact
// byte stream the encoder wrote.
func (d Decimal) Equal(other Decimal) bool { return d.d.Equal(other.d) }

// Add, Sub, Mul provide the arithmetic the expression language needs.
func (d Decimal) Add(other Decimal) Decimal { return Decimal{d: d.d.Add(other.d)} }
func (d Decimal) Sub(other Decimal) Decimal { return Decimal{d: d.d.Sub(other.d)} }
func (d Decimal) Mul(other Decimal) Decimal { return Decimal{d: d.d.Mul(other.d)} }

// Cmp returns -1, 0, or 1 per decimal.Decimal.Cmp.
func (d Decimal) Cmp(other Decimal) int { return d.d.Cmp(other.d) }
