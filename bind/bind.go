// Package bind converts Go values into JSON value trees using explicit
// per-type schemas.
//
// A Schema lists the members of the object produced for a Go type, with a
// getter function for each member. Member values are converted by Value, so
// a getter may return any supported Go value, an ast.Value, or a Marshaler:
//
//	var personSchema = bind.Schema[*Person]{
//		RefField: "id",
//		Fields: []bind.Field[*Person]{
//			{Name: "ID", Key: "id", Get: func(p *Person) any { return p.ID }},
//			{Name: "Name", Get: func(p *Person) any { return p.Name }, OmitNull: true},
//		},
//	}
//	obj, err := personSchema.Encode(p)
package bind

import (
	"cmp"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"time"

	"github.com/cabezudo/jtree/ast"
	"github.com/shopspring/decimal"
)

var (
	// ErrUsage is reported when a schema is not usable as written.
	ErrUsage = errors.New("invalid schema")

	// ErrUnsupported is reported for a Go value that has no JSON form.
	ErrUnsupported = errors.New("unsupported value")
)

// A Marshaler is a type that can encode itself as a JSON value.
type Marshaler interface {
	MarshalTree() (ast.Value, error)
}

// MarshalFunc adapts a function to the Marshaler interface.
type MarshalFunc func() (ast.Value, error)

// MarshalTree implements the Marshaler interface.
func (f MarshalFunc) MarshalTree() (ast.Value, error) { return f() }

// A Field describes one member of the object encoded for a value of type T.
type Field[T any] struct {
	// The name of the field, used in error messages and as the member key if
	// Key is empty.
	Name string

	// The key of the object member. If empty, Name is used.
	Key string

	// Get returns the value of the field for its argument. It must not be nil.
	Get func(T) any

	// If true, omit the member when its value is null.
	OmitNull bool

	// If true, omit the member when its value is the number zero.
	OmitZero bool

	// If the member value is an object, set its reference field to this
	// name. If empty, the object keeps its existing setting.
	RefField string

	// If true and the member value is an object, mark it as not
	// referenceable, so that ast.Reduce copies it instead of replacing it.
	NoRef bool

	// If true, the value must be an object, and its members are added to
	// the enclosing object instead of a member named by Key.
	Embedded bool
}

func (f Field[T]) key() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// A Schema describes how to encode values of type T as JSON objects.
type Schema[T any] struct {
	// The fields of the object, in order.
	Fields []Field[T]

	// The reference field of the encoded object. If empty, the default
	// (ast.DefaultRefField) is used.
	RefField string

	// If true, encoded objects are not referenceable.
	NoRef bool
}

// Encode returns a new object containing the fields of v described by s.
//
// It reports an error wrapping ErrUsage if s has no fields or a field has no
// getter, ErrUnsupported if a field value cannot be converted, and
// ast.ErrDuplicateKey if two fields produce the same key.
func (s Schema[T]) Encode(v T) (*ast.Object, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields defined for %T", ErrUsage, v)
	}
	var ms []*ast.Member
	for i, f := range s.Fields {
		if f.Get == nil {
			return nil, fmt.Errorf("%w: field %d (%q) has no getter", ErrUsage, i, f.Name)
		}
		fv, err := Value(f.Get(v))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if obj, ok := fv.(*ast.Object); ok {
			if f.RefField != "" {
				obj.SetRefField(f.RefField)
			}
			if f.NoRef {
				obj.SetReferenced(false)
			}
		}
		if f.Embedded {
			obj, ok := fv.(*ast.Object)
			if !ok {
				return nil, fmt.Errorf("%w: embedded field %q is %v, not object", ErrUsage, f.Name, fv.Kind())
			}
			for _, m := range obj.Members() {
				ms = append(ms, ast.Field(m.Key(), m.Value))
			}
			continue
		}
		if f.OmitNull && fv.Kind() == ast.KindNull {
			continue
		}
		if n, ok := fv.(*ast.Number); ok && f.OmitZero && n.Decimal().Sign() == 0 {
			continue
		}
		ms = append(ms, ast.Field(f.key(), fv))
	}
	obj, err := ast.NewObject(ms...)
	if err != nil {
		return nil, err
	}
	obj.SetRefField(s.RefField)
	obj.SetReferenced(!s.NoRef)
	return obj, nil
}

// For returns a Marshaler that encodes v using s. This allows a getter in one
// schema to return a value described by another.
func (s Schema[T]) For(v T) Marshaler {
	return MarshalFunc(func() (ast.Value, error) { return s.Encode(v) })
}

var (
	timeType    = reflect.TypeFor[time.Time]()
	decimalType = reflect.TypeFor[decimal.Decimal]()
)

// Value converts a Go value to a JSON value.
//
// An ast.Value is returned as-is, and a Marshaler encodes itself. A nil
// value or nil pointer becomes null. Booleans, strings, and numbers of all
// built-in types, as well as *big.Int and decimal.Decimal, become the
// corresponding scalars. A time.Time becomes a string formatted with
// ast.TimeLayout in UTC. Slices and arrays become arrays, and maps with
// string keys become objects with their keys in sorted order.
//
// Any other value reports an error wrapping ErrUnsupported.
func Value(v any) (ast.Value, error) {
	switch t := v.(type) {
	case nil:
		return ast.NewNull(), nil
	case ast.Value:
		return t, nil
	case Marshaler:
		return t.MarshalTree()
	case *big.Int:
		if t == nil {
			return ast.NewNull(), nil
		}
		return ast.NewNumber(decimal.NewFromBigInt(t, 0)), nil
	}
	return reflectValue(reflect.ValueOf(v))
}

func reflectValue(rv reflect.Value) (ast.Value, error) {
	switch rv.Type() {
	case timeType:
		ts := rv.Interface().(time.Time)
		return ast.NewString(ts.UTC().Format(ast.TimeLayout)), nil
	case decimalType:
		return ast.NewNumber(rv.Interface().(decimal.Decimal)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return ast.NewBool(rv.Bool()), nil
	case reflect.String:
		return ast.NewString(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ast.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		z := new(big.Int).SetUint64(rv.Uint())
		return ast.NewNumber(decimal.NewFromBigInt(z, 0)), nil
	case reflect.Float32, reflect.Float64:
		n, err := ast.NewFloat(rv.Float())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return n, nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ast.NewNull(), nil
		}
		return Value(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ast.NewNull(), nil
		}
		arr := ast.NewArray()
		for i := range rv.Len() {
			ev, err := Value(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.Add(ev)
		}
		return arr, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %v", ErrUnsupported, rv.Type().Key())
		} else if rv.IsNil() {
			return ast.NewNull(), nil
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		})
		obj := ast.MustObject()
		for _, k := range keys {
			ev, err := Value(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.String(), err)
			}
			obj.Add(k.String(), ev) // map keys are unique
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, rv.Type())
}
