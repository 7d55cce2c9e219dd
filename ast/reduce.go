package ast

import (
	"errors"
	"fmt"

	"github.com/creachadair/mds/mapset"
)

// ErrCycle is reported by Reduce when a value contains itself.
var ErrCycle = errors.New("value contains a cycle")

// Reduce returns the referenced form of v, without modifying v.
//
// Null, Bool, Number, and String values are returned unchanged.  An Object
// that permits referencing and has a member named by its reference field is
// replaced by the value of that member.  Any other Object is replaced by a new
// Object with the same keys and reference settings, whose values are reduced
// recursively.  An Array is replaced by a new Array of its reduced elements.
//
// If an Object or Array is reached again while it is being reduced, Reduce
// reports an error wrapping ErrCycle.
func Reduce(v Value) (Value, error) {
	r := reducer{active: mapset.New[Value]()}
	return r.reduce(v)
}

type reducer struct {
	active mapset.Set[Value] // containers on the current path
}

func (r reducer) enter(v Value) error {
	if r.active.Has(v) {
		return fmt.Errorf("reduce %v at %v: %w", v.Kind(), v.Pos(), ErrCycle)
	}
	r.active.Add(v)
	return nil
}

func (r reducer) reduce(v Value) (Value, error) {
	switch t := v.(type) {
	case *Object:
		if t.Referenced() {
			if m := t.Find(t.RefField()); m != nil {
				return m.Value, nil
			}
		}
		if err := r.enter(t); err != nil {
			return nil, err
		}
		defer r.active.Remove(t)

		out := &Object{node: t.node, refField: t.refField, noRef: t.noRef}
		for _, m := range t.members {
			rv, err := r.reduce(m.Value)
			if err != nil {
				return nil, err
			}
			out.add(&Member{pos: m.pos, key: m.key, Value: rv})
		}
		return out, nil

	case *Array:
		if err := r.enter(t); err != nil {
			return nil, err
		}
		defer r.active.Remove(t)

		out := &Array{node: t.node, values: make([]Value, len(t.values))}
		for i, elt := range t.values {
			rv, err := r.reduce(elt)
			if err != nil {
				return nil, err
			}
			out.values[i] = rv
		}
		return out, nil

	default:
		return v, nil
	}
}
