package ast

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional decimal digits retained by a Number.
const Scale = 6

// A Number is a decimal number in canonical form: rounded half away from zero
// to Scale fractional digits, with trailing zeroes removed.  Two numbers with
// equal values have identical representations.
type Number struct {
	node
	value decimal.Decimal
}

// NewNumber constructs a Number with the canonical form of d.
func NewNumber(d decimal.Decimal) *Number { return &Number{value: Canonical(d)} }

// NewInt constructs a Number with the value of z.
func NewInt(z int64) *Number { return NewNumber(decimal.NewFromInt(z)) }

// NewFloat constructs a Number with the value of f. It reports an error if f
// is infinite or NaN.
func NewFloat(f float64) (*Number, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("invalid number %v", f)
	}
	return NewNumber(decimal.NewFromFloat(f)), nil
}

// MaxExponent is the largest decimal exponent ParseNumber accepts after
// trailing zeroes are removed. A number that needs more trailing zeroes in
// plain notation is reported as out of range.
const MaxExponent = 1_000_000

// ParseNumber parses text as a decimal number. It accepts JSON number syntax,
// as well as other decimal notations accepted by decimal.NewFromString.
// It reports an error wrapping ErrNumberRange if the canonical exponent of
// the number exceeds MaxExponent.
func ParseNumber(text string) (*Number, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, err
	}
	n := NewNumber(d)
	if n.value.Exponent() > MaxExponent {
		return nil, fmt.Errorf("%w: exponent %d exceeds %d", ErrNumberRange, n.value.Exponent(), MaxExponent)
	}
	return n, nil
}

// Decimal returns the canonical decimal value of n.
func (n *Number) Decimal() decimal.Decimal { return n.value }

// IsInteger reports whether n has no fractional part.
func (n *Number) IsInteger() bool { return n.value.IsInteger() }

func (*Number) Kind() Kind { return KindNumber }

// JSON renders n in plain decimal notation, with no exponent.
func (n *Number) JSON() string { return n.value.String() }

func (n *Number) String() string { return n.JSON() }

var (
	zero   = decimal.New(0, 0)
	bigTen = big.NewInt(10)
)

// Canonical returns the canonical form of d: rounded half away from zero to
// Scale fractional digits, with trailing zeroes stripped. Zero at any scale
// becomes 0 with exponent 0. Canonical is idempotent.
func Canonical(d decimal.Decimal) decimal.Decimal {
	if exp := d.Exponent(); exp < -Scale {
		// If every digit lies below half of the last retained place, the
		// result is zero; skip the rescale.
		if numDigits(d.Coefficient())+int(exp) < -Scale {
			return zero
		}
		d = d.Round(Scale)
	}
	if d.Sign() == 0 {
		return zero
	}

	c, exp := d.Coefficient(), d.Exponent()
	text := c.Text(10)
	k := len(text) - len(strings.TrimRight(text, "0"))
	if k == 0 {
		return d
	}
	c.Quo(c, new(big.Int).Exp(bigTen, big.NewInt(int64(k)), nil))
	return decimal.NewFromBigInt(c, exp+int32(k))
}

// numDigits reports the number of decimal digits in the magnitude of z.
func numDigits(z *big.Int) int { return len(z.Text(10)) - max(0, -z.Sign()) }

// magnitude reports the position of the leading digit of d: a value with
// magnitude m satisfies 10^(m-1) <= |d| < 10^m. It does not expand the
// exponent, so it is cheap for numbers like 1e999999.
func magnitude(d decimal.Decimal) int {
	return numDigits(d.Coefficient()) + int(d.Exponent())
}

// numberOf converts a Go numeric value to a Number.
func numberOf(v any) (*Number, bool) {
	switch t := v.(type) {
	case int:
		return NewInt(int64(t)), true
	case int8:
		return NewInt(int64(t)), true
	case int16:
		return NewInt(int64(t)), true
	case int32:
		return NewInt(int64(t)), true
	case int64:
		return NewInt(t), true
	case uint:
		return NewNumber(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(t)), 0)), true
	case uint8:
		return NewInt(int64(t)), true
	case uint16:
		return NewInt(int64(t)), true
	case uint32:
		return NewInt(int64(t)), true
	case uint64:
		return NewNumber(decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0)), true
	case float32:
		n, err := NewFloat(float64(t))
		return n, err == nil
	case float64:
		n, err := NewFloat(t)
		return n, err == nil
	case decimal.Decimal:
		return NewNumber(t), true
	case *big.Int:
		if t == nil {
			return nil, false
		}
		return NewNumber(decimal.NewFromBigInt(t, 0)), true
	}
	return nil, false
}

// ErrNumberRange is reported by ParseNumber for a number whose exponent is
// too large to represent in plain notation.
var ErrNumberRange = errors.New("number exponent out of range")

var (
	errFraction = errors.New("number has a fractional part")
	errRange    = errors.New("number out of range")
)
