package ast

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is reported when a path does not resolve to a value.
	ErrNotFound = errors.New("property not found")

	// ErrInvalidPath is reported for an empty path, or a path with an empty
	// segment.
	ErrInvalidPath = errors.New("invalid path")
)

// PathError is the concrete type of errors reported by the Dig methods.
type PathError struct {
	Path string // the complete path requested
	Err  error  // the underlying failure
}

func (e *PathError) Error() string { return fmt.Sprintf("path %q: %v", e.Path, e.Err) }

// Unwrap supports error wrapping.
func (e *PathError) Unwrap() error { return e.Err }

// splitPath splits a dot-separated path into segments.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &PathError{Path: path, Err: fmt.Errorf("%w: empty path", ErrInvalidPath)}
	}
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		if seg == "" {
			return nil, &PathError{Path: path, Err: fmt.Errorf("%w: empty segment %d", ErrInvalidPath, i+1)}
		}
	}
	return segs, nil
}

// DigOpt resolves a dot-separated path of keys starting from o, for example
// "a.b.c".  Each segment but the last must name a member whose value is an
// object. DigOpt returns nil, nil if the path does not resolve; a member
// whose value is null resolves to a *Null.
//
// DigOpt reports an error only for an invalid path.
func (o *Object) DigOpt(path string) (Value, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	var cur Value = o
	for _, seg := range segs {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, nil
		}
		cur = obj.Get(seg)
		if cur == nil {
			return nil, nil
		}
	}
	return cur, nil
}

// Dig is as DigOpt, but reports a *PathError wrapping ErrNotFound if the path
// does not resolve.
func (o *Object) Dig(path string) (Value, error) {
	v, err := o.DigOpt(path)
	if err != nil {
		return nil, err
	} else if v == nil {
		return nil, &PathError{Path: path, Err: ErrNotFound}
	}
	return v, nil
}

// DigAs resolves path in o as Dig, then converts the result with conv.
// A conversion failure is reported as a *PathError wrapping the error from
// conv.
func DigAs[T any](o *Object, path string, conv func(Value) (T, error)) (T, error) {
	var out T
	v, err := o.Dig(path)
	if err != nil {
		return out, err
	}
	out, err = conv(v)
	if err != nil {
		return out, &PathError{Path: path, Err: err}
	}
	return out, nil
}

// DigOptAs resolves path in o as DigOpt, then converts the result with conv.
// If the path does not resolve, or resolves to null, DigOptAs returns the
// zero value and false without error.
func DigOptAs[T any](o *Object, path string, conv func(Value) (T, error)) (T, bool, error) {
	var out T
	v, err := o.DigOpt(path)
	if err != nil {
		return out, false, err
	} else if v == nil || v.Kind() == KindNull {
		return out, false, nil
	}
	out, err = conv(v)
	if err != nil {
		return out, false, &PathError{Path: path, Err: err}
	}
	return out, true, nil
}

// DigString resolves path in o and converts the result with AsString.
func (o *Object) DigString(path string) (string, error) { return DigAs(o, path, AsString) }

// DigInt64 resolves path in o and converts the result with AsInt64.
func (o *Object) DigInt64(path string) (int64, error) { return DigAs(o, path, AsInt64) }

// DigInt32 resolves path in o and converts the result with AsInt32.
func (o *Object) DigInt32(path string) (int32, error) { return DigAs(o, path, AsInt32) }

// DigInt resolves path in o and converts the result with AsInt.
func (o *Object) DigInt(path string) (int, error) { return DigAs(o, path, AsInt) }

// DigFloat64 resolves path in o and converts the result with AsFloat64.
func (o *Object) DigFloat64(path string) (float64, error) { return DigAs(o, path, AsFloat64) }

// DigBool resolves path in o and converts the result with AsBool.
func (o *Object) DigBool(path string) (bool, error) { return DigAs(o, path, AsBool) }

// DigBigInt resolves path in o and converts the result with AsBigInt.
func (o *Object) DigBigInt(path string) (*big.Int, error) { return DigAs(o, path, AsBigInt) }

// DigDecimal resolves path in o and converts the result with AsDecimal.
func (o *Object) DigDecimal(path string) (decimal.Decimal, error) { return DigAs(o, path, AsDecimal) }

// DigTime resolves path in o and converts the result with AsTime.
func (o *Object) DigTime(path string) (time.Time, error) { return DigAs(o, path, AsTime) }

// DigStrings resolves path in o and converts the result with AsStrings.
func (o *Object) DigStrings(path string) ([]string, error) { return DigAs(o, path, AsStrings) }

// DigBytes is as DigAs with AsBytes.
func (o *Object) DigBytes(path string) ([]byte, error) { return DigAs(o, path, AsBytes) }

// DigObject resolves path in o and converts the result with AsObject.
func (o *Object) DigObject(path string) (*Object, error) { return DigAs(o, path, AsObject) }

// DigArray resolves path in o and converts the result with AsArray.
func (o *Object) DigArray(path string) (*Array, error) { return DigAs(o, path, AsArray) }
