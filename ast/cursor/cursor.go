// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over a tree of JSON values.
//
// Unlike the Dig methods of package ast, a cursor can descend into arrays as
// well as objects, and remembers the values it passed through on the way.
package cursor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cabezudo/jtree/ast"
)

// Path follows path from v, as Cursor.Down does, and returns the value it
// reaches if that value has type T.
func Path[T ast.Value](v ast.Value, path ...any) (T, error) {
	var zero T
	c := New(v).Down(path...)
	if err := c.Err(); err != nil {
		return zero, err
	}
	out, ok := c.Value().(T)
	if !ok {
		return zero, fmt.Errorf("got %v, want %T", kindOf(c.Value()), zero)
	}
	return out, nil
}

// ParsePath splits a dot-separated path into cursor steps. A segment that is
// a decimal integer becomes an int step, and any other segment becomes a
// string step. An empty path yields no steps.
func ParsePath(s string) ([]any, error) {
	if s == "" {
		return nil, nil
	}
	segs := strings.Split(s, ".")
	out := make([]any, len(segs))
	for i, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("empty path segment %d in %q", i+1, s)
		}
		if n, err := strconv.Atoi(seg); err == nil {
			out[i] = n
		} else {
			out[i] = seg
		}
	}
	return out, nil
}

// A Cursor is a pointer that navigates into the structure of a ast.Value.
type Cursor struct {
	org ast.Value
	stk []ast.Value
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path returns the values from the origin to the current value of c,
// inclusive.
func (c *Cursor) Path() []ast.Value {
	return append([]ast.Value{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are either strings (denoting object
// keys), integers (denoting offsets into arrays or objects), or functions (see
// below).  If the path is valid, the cursor ends at the element reached. If
// the path cannot be completely consumed, traversal stops and an error is
// recorded. Use Err to recover the error.
//
// If a path element is a string, the corresponding value must be an object,
// and the string selects the value of the member with that key.
//
// If a path element is an integer, the corresponding value must be an array or
// object, and the integer selects the element or member value at that offset.
// Negative indices count backward from the end (-1 is last, -2 second last).
// An error is reported if the index is out of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(ast.Value) (ast.Value, error)
//
// If the function reports an error, traversal stops and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	cur := c.Value()
	for _, elt := range path {
		next, err := step(cur, elt)
		if err != nil {
			c.err = err
			break
		}
		c.stk = append(c.stk, next)
		cur = next
	}
	return c
}

// step resolves a single path element against v.
func step(v ast.Value, elt any) (ast.Value, error) {
	switch t := elt.(type) {
	case string:
		obj, ok := v.(*ast.Object)
		if !ok {
			return nil, fmt.Errorf("cannot traverse %v with %q", kindOf(v), t)
		} else if m := obj.Find(t); m != nil {
			return m.Value, nil
		}
		return nil, fmt.Errorf("key %q: %w", t, ast.ErrNotFound)

	case int:
		var n int
		var at func(int) ast.Value
		switch e := v.(type) {
		case *ast.Array:
			n, at = e.Len(), e.At
		case *ast.Object:
			n, at = e.Len(), func(i int) ast.Value { return e.At(i).Value }
		default:
			return nil, fmt.Errorf("cannot traverse %v with %d", kindOf(v), t)
		}
		i := t
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%v offset %d out of bounds (n=%d)", kindOf(v), t, n)
		}
		return at(i), nil

	case func(ast.Value) (ast.Value, error):
		return t(v)

	default:
		return nil, fmt.Errorf("invalid path element %T", elt)
	}
}

func kindOf(v ast.Value) ast.Kind {
	if v == nil {
		return ast.KindInvalid
	}
	return v.Kind()
}
