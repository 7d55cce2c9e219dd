// Package testutil defines support code for unit tests.
package testutil

import (
	"github.com/cabezudo/jtree/ast"
	"github.com/google/go-cmp/cmp"
)

// EquateValues is a cmp.Option that compares ast.Value trees structurally
// with ast.Equal, ignoring source positions.
var EquateValues = cmp.Comparer(func(a, b ast.Value) bool { return ast.Equal(a, b) })

// MustParse parses input as a JSON document, or panics.
func MustParse(input string) ast.Value {
	v, err := ast.ParseString(input)
	if err != nil {
		panic(err)
	}
	return v
}

// MustObject parses input as a JSON object, or panics.
func MustObject(input string) *ast.Object {
	obj, err := ast.AsObject(MustParse(input))
	if err != nil {
		panic(err)
	}
	return obj
}
