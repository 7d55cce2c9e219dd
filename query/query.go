// Package query implements structural queries over JSON values.
//
// A query describes a syntactic substructure of a JSON syntax tree, such as an
// object member, array element, or a path through the tree. Evaluating a query
// against a concrete JSON value traverses the structure described by the query
// and returns the resulting value.
//
// The simplest query is for a "path", a sequence of object keys and/or array
// indices that describes a path from the root of a JSON value. For example,
// given the JSON value:
//
//	[{"a": 1, "b": 2}, {"c": {"d": true}, "e": false}]
//
// the query
//
//	query.Path(1, "c", "d")
//
// yields the value "true".
//
// Query results share structure with their input: values selected from the
// input are not copied.
package query

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cabezudo/jtree/ast"
)

// Eval evaluates the given query beginning from root, returning the resulting
// value or an error.
func Eval(root ast.Value, q Query) (ast.Value, error) {
	return q.eval(root)
}

// A Query describes a traversal of a JSON value.
type Query interface {
	eval(ast.Value) (ast.Value, error)
}

// Path traverses a sequence of nested object keys or array indices from the
// root.  If no keys are specified, the root is returned. Each key must be a
// string, an int, or a Query.
func Path(keys ...any) Query {
	if len(keys) == 1 {
		return pathElem(keys[0])
	}
	pq := make(Seq, 0, len(keys))
	for _, key := range keys {
		q := pathElem(key)
		if sq, ok := q.(Seq); ok {
			pq = append(pq, sq...)
		} else {
			pq = append(pq, q)
		}
	}
	return pq
}

func pathElem(key any) Query {
	switch t := key.(type) {
	case string:
		return objKey(t)
	case int:
		return nthQuery(t)
	case Query:
		return t
	default:
		panic(fmt.Sprintf("invalid path element %T", key))
	}
}

func wantKind(v ast.Value, want ast.Kind) error {
	if v == nil {
		return fmt.Errorf("got no value, want %v", want)
	}
	return fmt.Errorf("got %v, want %v", v.Kind(), want)
}

// Key selects the value of the member with the given key from an object.
func Key(key string) Query { return objKey(key) }

// Index selects the element at offset i of an array. A negative offset
// counts backward from the end of the array.
func Index(i int) Query { return nthQuery(i) }

type objKey string

func (o objKey) eval(v ast.Value) (ast.Value, error) {
	obj, ok := v.(*ast.Object)
	if !ok {
		return nil, wantKind(v, ast.KindObject)
	}
	mem := obj.Find(string(o))
	if mem == nil {
		return nil, fmt.Errorf("key %q not found", o)
	}
	return mem.Value, nil
}

type nthQuery int

func (nq nthQuery) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	i, err := offset(int(nq), arr.Len())
	if err != nil {
		return nil, err
	}
	return arr.At(i), nil
}

// Dig resolves a dot-separated path of object keys from its input, as
// ast.Object.Dig does. The input must be an object.
func Dig(path string) Query { return digQuery(path) }

type digQuery string

func (d digQuery) eval(v ast.Value) (ast.Value, error) {
	obj, ok := v.(*ast.Object)
	if !ok {
		return nil, wantKind(v, ast.KindObject)
	}
	return obj.Dig(string(d))
}

// Ref returns the referenced form of its input, as computed by ast.Reduce.
func Ref() Query { return refQuery{} }

type refQuery struct{}

func (refQuery) eval(v ast.Value) (ast.Value, error) { return ast.Reduce(v) }

// arrayOf reports whether v is an array, and if not returns an error
// describing the mismatch.
func arrayOf(v ast.Value) (*ast.Array, error) {
	if arr, ok := v.(*ast.Array); ok {
		return arr, nil
	}
	return nil, wantKind(v, ast.KindArray)
}

// offset resolves a possibly-negative offset i into an array of length n.
func offset(i, n int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %d out of range (0..%d)", i, n)
	}
	return i, nil
}

// A Selection is a query that keeps the elements of its input array for
// which the function reports true, in their original order.
type Selection func(ast.Value) bool

func (q Selection) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	var keep []ast.Value
	for _, elt := range arr.All() {
		if q(elt) {
			keep = append(keep, elt)
		}
	}
	return ast.NewArray(keep...), nil
}

// A Mapping is a query that replaces each element of its input array with the
// result of the function applied to that element.
type Mapping func(ast.Value) ast.Value

func (q Mapping) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	vs := arr.Values()
	for i, elt := range vs {
		vs[i] = q(elt)
	}
	return ast.NewArray(vs...), nil
}

// Slice selects the elements of an array at offsets lo <= i < hi as a new
// array. Negative offsets count back from the end, and hi == 0 means the end
// of the array.
func Slice(lo, hi int) Query { return sliceQuery{lo, hi} }

type sliceQuery struct{ lo, hi int }

func (q sliceQuery) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	n := arr.Len()
	lo, err := offset(q.lo, n)
	if err != nil {
		return nil, err
	}
	hi := q.hi
	if hi <= 0 {
		hi += n
	}
	switch {
	case hi < 0 || hi > n:
		return nil, fmt.Errorf("index %d out of range (0..%d)", q.hi, n)
	case lo > hi:
		return nil, fmt.Errorf("index start %d > end %d", q.lo, q.hi)
	}
	return ast.NewArray(arr.Values()[lo:hi]...), nil
}

// Pick returns a new array of the elements at the given offsets of its input
// array, in the order given. Negative offsets count back from the end.
func Pick(offsets ...int) Query { return pickQuery(offsets) }

type pickQuery []int

func (q pickQuery) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Value, len(q))
	for i, off := range q {
		j, err := offset(off, arr.Len())
		if err != nil {
			return nil, err
		}
		out[i] = arr.At(j)
	}
	return ast.NewArray(out...), nil
}

// Len returns the length of its input as a number: the member count of an
// object, the element count of an array, or the byte length of a string.
// The length of null is 0. Other values have no length.
func Len() Query { return lenQuery{} }

type lenQuery struct{}

func (lenQuery) eval(v ast.Value) (ast.Value, error) {
	switch t := v.(type) {
	case *ast.Null:
		return ast.NewInt(0), nil
	case interface{ Len() int }:
		return ast.NewInt(int64(t.Len())), nil
	}
	return nil, fmt.Errorf("cannot take length of %v", v)
}

// Seq applies each of its queries in turn, each to the output of the one
// before. An empty Seq returns its input.
type Seq []Query

func (q Seq) eval(v ast.Value) (ast.Value, error) {
	for _, sq := range q {
		var err error
		if v, err = sq.eval(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Alt tries each of its queries against the same input, and returns the
// first result that does not fail. If every alternative fails, so does Alt.
type Alt []Query

func (q Alt) eval(v ast.Value) (ast.Value, error) {
	var errs []error
	for _, alt := range q {
		w, err := alt.eval(v)
		if err == nil {
			return w, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no alternatives")
	}
	return nil, fmt.Errorf("no matching alternatives: %w", errors.Join(errs...))
}

// Recur evaluates a path query against its input and every value nested
// within it, and returns an array of the results that did not fail, in
// document order. It fails if there are none. The arguments have the same
// constraints as Path.
func Recur(keys ...any) Query { return recQuery{Path(keys...)} }

type recQuery struct{ Query }

func (q recQuery) eval(v ast.Value) (ast.Value, error) {
	var out []ast.Value
	var walk func(ast.Value)
	walk = func(v ast.Value) {
		if r, err := q.Query.eval(v); err == nil {
			out = append(out, r)
		}
		switch t := v.(type) {
		case *ast.Object:
			for _, sub := range t.All() {
				walk(sub)
			}
		case *ast.Array:
			for _, sub := range t.All() {
				walk(sub)
			}
		}
	}
	walk(v)
	if len(out) == 0 {
		return nil, errors.New("no matches")
	}
	return ast.NewArray(out...), nil
}

// Each evaluates a path query against every element of its input array, and
// returns an array of the results. It fails if the input is not an array or
// if the query fails for any element. The arguments have the same
// constraints as Path.
func Each(keys ...any) Query { return eachQuery{Path(keys...)} }

type eachQuery struct{ Query }

func (q eachQuery) eval(v ast.Value) (ast.Value, error) {
	arr, err := arrayOf(v)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Value, 0, arr.Len())
	for i, elt := range arr.All() {
		r, err := q.Query.eval(elt)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out = append(out, r)
	}
	return ast.NewArray(out...), nil
}

// Object constructs an object with the given keys mapped to the results of
// matching the query values against its input. The members of the result are
// in lexicographic order by key.
type Object map[string]Query

func (o Object) eval(v ast.Value) (ast.Value, error) {
	out := ast.MustObject()
	for _, key := range slices.Sorted(maps.Keys(o)) {
		val, err := o[key].eval(v)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", key, err)
		}
		out.Add(key, val) // keys are unique
	}
	return out, nil
}

// Array constructs an array with the values produced by matching the given
// queries against its input.
type Array []Query

func (a Array) eval(v ast.Value) (ast.Value, error) {
	out := ast.NewArray()
	for i, q := range a {
		val, err := q.eval(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out.Add(val)
	}
	return out, nil
}

// A String query ignores its input and returns the given string.
func String(s string) Query { return constQuery{ast.NewString(s)} }

// A Float query ignores its input and returns the given number.
// It fails if n is not finite.
func Float(n float64) Query {
	v, err := ast.NewFloat(n)
	if err != nil {
		return errQuery{err}
	}
	return constQuery{v}
}

// An Int query ignores its input and returns the given integer.
func Int(z int64) Query { return constQuery{ast.NewInt(z)} }

// A Bool query ignores its input and returns the given bool.
func Bool(b bool) Query { return constQuery{ast.NewBool(b)} }

// A Null query ignores its input and returns a null value.
func Null() Query { return constQuery{ast.NewNull()} }

// A Value query ignores its input and returns the value of v converted by
// ast.ToValue.
func Value(v any) Query { return constQuery{ast.ToValue(v)} }

type constQuery struct{ ast.Value }

func (c constQuery) eval(_ ast.Value) (ast.Value, error) { return c.Value, nil }

type errQuery struct{ err error }

func (e errQuery) eval(ast.Value) (ast.Value, error) { return nil, e.err }

// A Glob query returns an array of all its inputs.
func Glob() Query { return globQuery{} }

type globQuery struct{}

func (globQuery) eval(v ast.Value) (ast.Value, error) {
	switch v.(type) {
	case *ast.Object, *ast.Array:
		return ast.AsArray(v)
	default:
		return nil, errors.New("no matching values")
	}
}
