package ast

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrCast is matched by every *CastError.
var ErrCast = errors.New("invalid conversion")

// TimeLayout is the layout used to convert strings to and from time.Time.
// Times are interpreted and rendered in UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// CastError is the concrete type of errors reported when a value cannot be
// converted to a requested type.
type CastError struct {
	From Kind   // the kind of the value
	To   string // the name of the target type
	Err  error  // the underlying failure, if any
}

func (e *CastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %v to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("cannot convert %v to %s", e.From, e.To)
}

// Unwrap supports error wrapping.
func (e *CastError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCast.
func (e *CastError) Is(target error) bool { return target == ErrCast }

func castError(v Value, to string, err error) error {
	return &CastError{From: kindOf(v), To: to, Err: err}
}

// AsBool converts v to a bool.
//
// A Bool yields its value. A String yields true if its text is "true" in any
// letter case, and false otherwise.
func AsBool(v Value) (bool, error) {
	switch t := v.(type) {
	case *Bool:
		return t.value, nil
	case *String:
		return strings.EqualFold(t.value, "true"), nil
	default:
		return false, castError(v, "bool", nil)
	}
}

// asInteger converts v to a signed integer that fits in the given number of
// bits. Conversions are exact: a number with a fractional part or outside the
// range of the target fails.
func asInteger(v Value, bits int, to string) (int64, error) {
	switch t := v.(type) {
	case *Bool:
		if t.value {
			return 1, nil
		}
		return 0, nil
	case *Number:
		if !t.value.IsInteger() {
			return 0, castError(v, to, errFraction)
		} else if magnitude(t.value) > 19 {
			return 0, castError(v, to, errRange)
		}
		z := t.value.BigInt()
		if !z.IsInt64() {
			return 0, castError(v, to, errRange)
		}
		n := z.Int64()
		if lim := int64(1) << (bits - 1); bits < 64 && (n < -lim || n >= lim) {
			return 0, castError(v, to, errRange)
		}
		return n, nil
	case *String:
		n, err := strconv.ParseInt(t.value, 10, bits)
		if err != nil {
			return 0, castError(v, to, err)
		}
		return n, nil
	default:
		return 0, castError(v, to, nil)
	}
}

// AsInt8 converts v to an int8.
func AsInt8(v Value) (int8, error) {
	n, err := asInteger(v, 8, "int8")
	return int8(n), err
}

// AsInt16 converts v to an int16.
func AsInt16(v Value) (int16, error) {
	n, err := asInteger(v, 16, "int16")
	return int16(n), err
}

// AsInt32 converts v to an int32.
func AsInt32(v Value) (int32, error) {
	n, err := asInteger(v, 32, "int32")
	return int32(n), err
}

// AsInt64 converts v to an int64.
//
// A Bool yields 1 or 0. A Number must be an integer in range. A String is
// parsed as a base-10 integer.
func AsInt64(v Value) (int64, error) { return asInteger(v, 64, "int64") }

// AsInt converts v to an int.
func AsInt(v Value) (int, error) {
	n, err := asInteger(v, strconv.IntSize, "int")
	return int(n), err
}

func asFloat(v Value, bits int, to string) (float64, error) {
	switch t := v.(type) {
	case *Bool:
		if t.value {
			return 1, nil
		}
		return 0, nil
	case *Number:
		if magnitude(t.value) > 310 {
			return 0, castError(v, to, errRange)
		}
		f, _ := t.value.Float64()
		if math.IsInf(f, 0) || (bits == 32 && math.Abs(f) > math.MaxFloat32) {
			return 0, castError(v, to, errRange)
		}
		return f, nil
	case *String:
		f, err := strconv.ParseFloat(t.value, bits)
		if err != nil {
			return 0, castError(v, to, err)
		}
		return f, nil
	default:
		return 0, castError(v, to, nil)
	}
}

// AsFloat32 converts v to the nearest float32.
func AsFloat32(v Value) (float32, error) {
	f, err := asFloat(v, 32, "float32")
	return float32(f), err
}

// AsFloat64 converts v to the nearest float64. A Number whose magnitude is
// too large to represent fails rather than becoming infinite.
func AsFloat64(v Value) (float64, error) { return asFloat(v, 64, "float64") }

// AsBigInt converts v to an arbitrary-precision integer.
func AsBigInt(v Value) (*big.Int, error) {
	switch t := v.(type) {
	case *Bool:
		if t.value {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case *Number:
		if !t.value.IsInteger() {
			return nil, castError(v, "big.Int", errFraction)
		}
		return t.value.BigInt(), nil
	case *String:
		z, ok := new(big.Int).SetString(t.value, 10)
		if !ok {
			return nil, castError(v, "big.Int", fmt.Errorf("invalid integer syntax %q", t.value))
		}
		return z, nil
	default:
		return nil, castError(v, "big.Int", nil)
	}
}

// AsDecimal converts v to a decimal in canonical form.
func AsDecimal(v Value) (decimal.Decimal, error) {
	switch t := v.(type) {
	case *Bool:
		if t.value {
			return decimal.NewFromInt(1), nil
		}
		return zero, nil
	case *Number:
		return t.value, nil
	case *String:
		d, err := decimal.NewFromString(t.value)
		if err != nil {
			return decimal.Decimal{}, castError(v, "decimal", err)
		}
		return Canonical(d), nil
	default:
		return decimal.Decimal{}, castError(v, "decimal", nil)
	}
}

// AsRune converts v to a rune.
//
// A Bool yields '1' or '0'. A Number must be an integer that is a valid
// Unicode code point. A String yields its first rune, and fails if empty.
func AsRune(v Value) (rune, error) {
	switch t := v.(type) {
	case *Bool:
		if t.value {
			return '1', nil
		}
		return '0', nil
	case *Number:
		n, err := asInteger(v, 32, "rune")
		if err != nil {
			return 0, err
		} else if !utf8.ValidRune(rune(n)) {
			return 0, castError(v, "rune", fmt.Errorf("invalid code point %d", n))
		}
		return rune(n), nil
	case *String:
		if t.value == "" {
			return 0, castError(v, "rune", errors.New("empty string"))
		}
		r, _ := utf8.DecodeRuneInString(t.value)
		return r, nil
	default:
		return 0, castError(v, "rune", nil)
	}
}

// AsString converts a scalar v to a string. A Bool yields "true" or "false",
// a Number its canonical decimal text, and a String its text.
func AsString(v Value) (string, error) {
	switch t := v.(type) {
	case *Bool:
		return t.JSON(), nil
	case *Number:
		return t.JSON(), nil
	case *String:
		return t.value, nil
	default:
		return "", castError(v, "string", nil)
	}
}

// AsStrings converts v to a slice of strings. A scalar yields a single
// string as for AsString; an Array converts each of its elements.
func AsStrings(v Value) ([]string, error) {
	switch t := v.(type) {
	case *Bool, *Number, *String:
		s, err := AsString(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	case *Array:
		out := make([]string, len(t.values))
		for i, elt := range t.values {
			s, err := AsString(elt)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, castError(v, "[]string", nil)
	}
}

// AsBytes converts v to a slice of bytes. A scalar yields a single byte with
// the value of AsInt8, in two's complement; an Array converts each of its
// elements the same way.
func AsBytes(v Value) ([]byte, error) {
	switch t := v.(type) {
	case *Bool, *Number, *String:
		n, err := asInteger(v, 8, "[]byte")
		if err != nil {
			return nil, err
		}
		return []byte{byte(int8(n))}, nil
	case *Array:
		out := make([]byte, len(t.values))
		for i, elt := range t.values {
			n, err := asInteger(elt, 8, "byte")
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = byte(int8(n))
		}
		return out, nil
	default:
		return nil, castError(v, "[]byte", nil)
	}
}

// AsTime converts v to a time in UTC.
//
// A Number is an integer count of milliseconds since the Unix epoch.
// A String is parsed using TimeLayout.
func AsTime(v Value) (time.Time, error) {
	switch t := v.(type) {
	case *Number:
		ms, err := asInteger(v, 64, "time.Time")
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	case *String:
		ts, err := time.ParseInLocation(TimeLayout, t.value, time.UTC)
		if err != nil {
			return time.Time{}, castError(v, "time.Time", err)
		}
		return ts, nil
	default:
		return time.Time{}, castError(v, "time.Time", nil)
	}
}

// AsObject converts v to an *Object. Only an Object can be converted.
func AsObject(v Value) (*Object, error) {
	if obj, ok := v.(*Object); ok {
		return obj, nil
	}
	return nil, castError(v, "object", nil)
}

// AsArray converts v to an *Array.
//
// An Array is returned unchanged. An Object yields a new array of its member
// values in order. A Bool, Number, or String yields a new array with v as its
// only element.
func AsArray(v Value) (*Array, error) {
	if arr, ok := v.(*Array); ok {
		return arr, nil
	}
	vs, err := AsValues(v)
	if err != nil {
		return nil, castError(v, "array", nil)
	}
	return &Array{values: vs}, nil
}

// AsValues converts v to a slice of values, as for AsArray. For an Array the
// result is a copy of its elements.
func AsValues(v Value) ([]Value, error) {
	switch t := v.(type) {
	case *Array:
		return t.Values(), nil
	case *Object:
		vs := make([]Value, len(t.members))
		for i, m := range t.members {
			vs[i] = m.Value
		}
		return vs, nil
	case *Bool, *Number, *String:
		return []Value{v}, nil
	default:
		return nil, castError(v, "[]Value", nil)
	}
}
