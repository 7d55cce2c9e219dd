// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a tree of JSON values, and a parser that constructs
// value trees from JSON source.
//
// A Value is one of the concrete types *Null, *Bool, *Number, *String,
// *Array, or *Object. The set is closed: no other package can implement
// Value. Values parsed from source text carry the position of the token they
// were built from; values constructed by a program have an invalid (zero)
// position.
package ast

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cabezudo/jtree"
)

// Kind identifies the variant of a Value.
// Kinds are ordered in the ranking used by Compare.
type Kind byte

// Constants defining the valid Kind values.
const (
	KindInvalid Kind = iota // no value
	KindNull                // null
	KindBool                // true or false
	KindNumber              // a decimal number
	KindString              // a string
	KindArray               // an array of values
	KindObject              // an object of key-value members
)

var kindStr = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[KindInvalid]
	}
	return kindStr[k]
}

// A Value is an arbitrary JSON value.
type Value interface {
	// Kind reports which variant of value this is.
	Kind() Kind

	// Pos reports the source position of the value, if it was parsed.
	Pos() jtree.Position

	// JSON renders the value as JSON text on a single line.
	JSON() string

	// String returns the same text as JSON.
	String() string

	isValue()
}

// kindOf returns the kind of v, or KindInvalid if v == nil.
func kindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}

type node struct{ pos jtree.Position }

// Pos satisfies part of the Value interface.
func (n node) Pos() jtree.Position { return n.pos }

func (node) isValue() {}

// Null represents the null constant.
type Null struct{ node }

// NewNull constructs a new null value.
func NewNull() *Null { return new(Null) }

func (*Null) Kind() Kind { return KindNull }
func (*Null) JSON() string { return "null" }
func (n *Null) String() string { return n.JSON() }

// A Bool is a Boolean constant, true or false.
type Bool struct {
	node
	value bool
}

// NewBool constructs a Bool with the given value.
func NewBool(b bool) *Bool { return &Bool{value: b} }

// Value reports the truth value of b.
func (b *Bool) Value() bool { return b.value }

func (*Bool) Kind() Kind { return KindBool }

func (b *Bool) JSON() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) String() string { return b.JSON() }

// A String is a string value. The text is stored unescaped.
type String struct {
	node
	value string
}

// NewString constructs a String with the given text.
func NewString(s string) *String { return &String{value: s} }

// Value returns the unescaped text of s.
func (s *String) Value() string { return s.value }

// Len reports the length of s in bytes.
func (s *String) Len() int { return len(s.value) }

func (*String) Kind() Kind { return KindString }
func (s *String) JSON() string { return jtree.Quote(s.value) }
func (s *String) String() string { return s.JSON() }

// An Array is an ordered sequence of values.
type Array struct {
	node
	values []Value
}

// NewArray constructs an Array containing the given values in order.
func NewArray(vs ...Value) *Array {
	a := &Array{values: make([]Value, 0, len(vs))}
	a.Add(vs...)
	return a
}

// Add appends vs to the end of a. A nil value is added as null.
func (a *Array) Add(vs ...Value) {
	for _, v := range vs {
		a.values = append(a.values, orNull(v))
	}
}

// orNull returns v, or a new null if v == nil.
func orNull(v Value) Value {
	if v == nil {
		return NewNull()
	}
	return v
}

// At returns the element of a at index i, or nil if i is out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// Delete removes the element at index i and reports whether it was present.
func (a *Array) Delete(i int) bool {
	if i < 0 || i >= len(a.values) {
		return false
	}
	a.values = slices.Delete(a.values, i, i+1)
	return true
}

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.values) }

// Values returns a copy of the elements of a.
func (a *Array) Values() []Value { return slices.Clone(a.values) }

// All returns an iterator over the indexes and elements of a.
func (a *Array) All() iter.Seq2[int, Value] { return slices.All(a.values) }

func (*Array) Kind() Kind { return KindArray }

func (a *Array) JSON() string {
	if len(a.values) == 0 {
		return "[ ]"
	}
	var sb strings.Builder
	sb.WriteString("[ ")
	for i, v := range a.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteString(" ]")
	return sb.String()
}

func (a *Array) String() string { return a.JSON() }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	pos jtree.Position
	key string

	Value Value
}

// Field constructs an object member with the given key and value.  The value
// is converted with ToValue.
func Field(key string, value any) *Member {
	return &Member{key: key, Value: ToValue(value)}
}

// Key returns the key of m.
func (m *Member) Key() string { return m.key }

// Pos reports the source position of the key of m, if it was parsed.
func (m *Member) Pos() jtree.Position { return m.pos }

// JSON renders m as a "key": value pair.
func (m *Member) JSON() string { return jtree.Quote(m.key) + ": " + m.Value.JSON() }

func (m *Member) String() string { return m.JSON() }

// ToValue converts a Go value into a Value. It panics if v does not have one
// of the types listed here:
//
//	nil                        *Null
//	Value                      unchanged
//	*Member                    a single-member *Object
//	bool                       *Bool
//	string                     *String
//	time.Time                  *String (TimeLayout, in UTC)
//	[]string, []Value, []any   *Array
//	map[string]any             *Object (keys in sorted order)
//	signed and unsigned ints   *Number
//	float32, float64           *Number (must be finite)
//	decimal.Decimal, *big.Int  *Number
func ToValue(v any) Value {
	out, err := toValue(v)
	if err != nil {
		panic(err)
	}
	return out
}

func toValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NewNull(), nil
	case Value:
		return t, nil
	case *Member:
		obj := new(Object)
		obj.add(t) // a new object has no duplicates
		return obj, nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case time.Time:
		return NewString(t.UTC().Format(TimeLayout)), nil
	case []string:
		arr := &Array{values: make([]Value, len(t))}
		for i, s := range t {
			arr.values[i] = NewString(s)
		}
		return arr, nil
	case []Value:
		return NewArray(t...), nil
	case []any:
		arr := &Array{values: make([]Value, len(t))}
		for i, elt := range t {
			ev, err := toValue(elt)
			if err != nil {
				return nil, err
			}
			arr.values[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := new(Object)
		for _, key := range slices.Sorted(maps.Keys(t)) {
			ev, err := toValue(t[key])
			if err != nil {
				return nil, err
			}
			obj.add(&Member{key: key, Value: ev})
		}
		return obj, nil
	}
	if n, ok := numberOf(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert %T to a value", v)
}
