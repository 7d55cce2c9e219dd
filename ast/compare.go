package ast

import (
	"cmp"
	"strings"

	"github.com/shopspring/decimal"
)

// Compare compares a and b in a total order over values, and returns -1, 0,
// or +1 if a is less than, equal to, or greater than b.
//
// Values of different kinds are ordered by kind: null < bool < number <
// string < array < object. A nil Value sorts before all others. Within a
// kind:
//
//   - false < true
//   - numbers are ordered by value
//   - strings are ordered bytewise
//   - arrays are ordered by length, then elementwise
//   - objects are ordered by length, then member by member in order,
//     comparing keys and then values
//
// Source positions and reference settings are not compared.
func Compare(a, b Value) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch x := a.(type) {
	case *Bool:
		y := b.(*Bool)
		if x.value == y.value {
			return 0
		} else if x.value {
			return 1
		}
		return -1
	case *Number:
		return compareDecimal(x.value, b.(*Number).value)
	case *String:
		return strings.Compare(x.value, b.(*String).value)
	case *Array:
		y := b.(*Array)
		if c := cmp.Compare(len(x.values), len(y.values)); c != 0 {
			return c
		}
		for i, v := range x.values {
			if c := Compare(v, y.values[i]); c != 0 {
				return c
			}
		}
		return 0
	case *Object:
		y := b.(*Object)
		if c := cmp.Compare(len(x.members), len(y.members)); c != 0 {
			return c
		}
		for i, m := range x.members {
			n := y.members[i]
			if c := strings.Compare(m.key, n.key); c != 0 {
				return c
			} else if c := Compare(m.Value, n.Value); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0 // both null or both nil
}

// compareDecimal orders x and y by sign and magnitude before comparing their
// digits, so that numbers with large exponents are not expanded.
func compareDecimal(x, y decimal.Decimal) int {
	sx, sy := x.Sign(), y.Sign()
	if sx != sy {
		return cmp.Compare(sx, sy)
	} else if sx == 0 {
		return 0
	}
	if c := cmp.Compare(magnitude(x), magnitude(y)); c != 0 {
		return c * sx
	}
	return x.Cmp(y)
}

// Equal reports whether a and b are structurally equal, that is, whether
// Compare(a, b) == 0.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }
