// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/creachadair/mds/mapset"
)

// ErrDuplicateKey is reported when a member is added to an Object that
// already has a member with the same key.
var ErrDuplicateKey = errors.New("duplicate object key")

// DefaultRefField is the reference field name of an Object unless it has
// been changed with SetRefField.
const DefaultRefField = "id"

// An Object is an ordered collection of key-value members with unique keys.
//
// In addition to its members, an Object carries the name of its reference
// field, consulted by Reduce. The reference field is metadata: it need not
// be one of the keys of the object.
type Object struct {
	node
	members []*Member
	index   map[string]*Member

	refField string // if "", use DefaultRefField
	noRef    bool   // if true, Reduce never substitutes this object
}

// NewObject constructs an Object with the given members in order.  It reports
// an error wrapping ErrDuplicateKey if two members have the same key.
func NewObject(ms ...*Member) (*Object, error) {
	obj := new(Object)
	if err := obj.AddMembers(ms...); err != nil {
		return nil, err
	}
	return obj, nil
}

// MustObject is as NewObject, but panics if an error is reported.
func MustObject(ms ...*Member) *Object {
	obj, err := NewObject(ms...)
	if err != nil {
		panic(err)
	}
	return obj
}

func (o *Object) add(m *Member) error {
	if _, ok := o.index[m.key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, m.key)
	}
	if o.index == nil {
		o.index = make(map[string]*Member)
	}
	m.Value = orNull(m.Value)
	o.members = append(o.members, m)
	o.index[m.key] = m
	return nil
}

// Add adds a member with the given key and value to the end of o. A nil
// value is added as null.
// It reports an error wrapping ErrDuplicateKey if o already has a member with
// that key; in that case o is not modified.
func (o *Object) Add(key string, v Value) error { return o.add(&Member{key: key, Value: v}) }

// AddMembers adds ms to the end of o in order.  If any key is already present
// in o or is repeated in ms, AddMembers reports an error wrapping
// ErrDuplicateKey and o is not modified.
func (o *Object) AddMembers(ms ...*Member) error {
	seen := mapset.New[string]()
	for _, m := range ms {
		if seen.Has(m.key) || o.Has(m.key) {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, m.key)
		}
		seen.Add(m.key)
	}
	for _, m := range ms {
		o.add(m)
	}
	return nil
}

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member { return o.index[key] }

// Get returns the value of the member of o with the given key, or nil if
// there is no such member. A member whose value is null yields a *Null.
func (o *Object) Get(key string) Value {
	if m := o.index[key]; m != nil {
		return m.Value
	}
	return nil
}

// Has reports whether o has a member with the given key.
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// At returns the member of o at index i in order, or nil if i is out of range.
func (o *Object) At(i int) *Member {
	if i < 0 || i >= len(o.members) {
		return nil
	}
	return o.members[i]
}

// Delete removes the member with the given key and reports whether it was
// present.
func (o *Object) Delete(key string) bool {
	m, ok := o.index[key]
	if !ok {
		return false
	}
	delete(o.index, key)
	o.members = slices.DeleteFunc(o.members, func(e *Member) bool { return e == m })
	return true
}

// DeleteAt removes the member at index i and reports whether it was present.
func (o *Object) DeleteAt(i int) bool {
	if i < 0 || i >= len(o.members) {
		return false
	}
	delete(o.index, o.members[i].key)
	o.members = slices.Delete(o.members, i, i+1)
	return true
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.members) }

// Keys returns the keys of o in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Members returns a copy of the members of o in order.
func (o *Object) Members() []*Member { return slices.Clone(o.members) }

// All returns an iterator over the keys and values of o in order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, m := range o.members {
			if !yield(m.key, m.Value) {
				return
			}
		}
	}
}

// RefField returns the name of the reference field of o.
func (o *Object) RefField() string {
	if o.refField == "" {
		return DefaultRefField
	}
	return o.refField
}

// SetRefField sets the name of the reference field of o.  If name == "", the
// default is restored.
func (o *Object) SetRefField(name string) { o.refField = name }

// Referenced reports whether Reduce may replace o by its reference field.
func (o *Object) Referenced() bool { return !o.noRef }

// SetReferenced sets whether Reduce may replace o by its reference field.
func (o *Object) SetReferenced(ok bool) { o.noRef = !ok }

// Clone returns a shallow copy of o. The copy has new members with the same
// keys and values, and the same reference settings.
func (o *Object) Clone() *Object { return o.copyIf(func(*Member) bool { return true }) }

// Pick returns a shallow copy of o containing only the members whose keys are
// listed, in the order they occur in o. Keys not present in o are ignored.
func (o *Object) Pick(keys ...string) *Object {
	want := mapset.New(keys...)
	return o.copyIf(func(m *Member) bool { return want.Has(m.key) })
}

func (o *Object) copyIf(keep func(*Member) bool) *Object {
	out := &Object{node: o.node, refField: o.refField, noRef: o.noRef}
	for _, m := range o.members {
		if keep(m) {
			out.add(&Member{pos: m.pos, key: m.key, Value: m.Value})
		}
	}
	return out
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) JSON() string {
	if len(o.members) == 0 {
		return "{ }"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, m := range o.members {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteString(" }")
	return sb.String()
}

func (o *Object) String() string { return o.JSON() }
