package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cabezudo/jtree/ast"
)

// JSONPath compiles a JSONPath expression into a query. Evaluating the query
// yields an array of all the values selected by the expression, in document
// order.
//
// The supported grammar is:
//
//	 expr = "$" {step}
//	 step = "." name | ".." name | "[" sel "]"
//	 name = WORD | "'" TEXT "'" | "*"
//	  sel = name | INDEX {"," INDEX} | [INDEX] ":" [INDEX]
//
// where WORD is a run of letters, digits, and underscores, and INDEX is a
// decimal integer, negative to count from the end of an array. Filter and
// script selectors are not supported.
func JSONPath(expr string) (Query, error) {
	rest, ok := strings.CutPrefix(expr, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var steps []pathStep
	for rest != "" {
		step, tail, err := parsePathStep(rest)
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", len(expr)-len(rest), err)
		}
		steps = append(steps, step)
		rest = tail
	}
	return jsonPathQuery(steps), nil
}

// MustJSONPath is as JSONPath, but panics if expr is invalid.
func MustJSONPath(expr string) Query {
	q, err := JSONPath(expr)
	if err != nil {
		panic(fmt.Sprintf("JSONPath %q: %v", expr, err))
	}
	return q
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
	indexRE = regexp.MustCompile(`^(-?\d+(?:,-?\d+)*)`)
	sliceRE = regexp.MustCompile(`^(-?\d+)?:(-?\d+)?`)
)

// A pathStep maps each of a list of values to zero or more values.
type pathStep func(ast.Value, []ast.Value) []ast.Value

type jsonPathQuery []pathStep

func (q jsonPathQuery) eval(v ast.Value) (ast.Value, error) {
	cur := []ast.Value{v}
	for _, step := range q {
		var next []ast.Value
		for _, elt := range cur {
			next = step(elt, next)
		}
		cur = next
	}
	return ast.NewArray(cur...), nil
}

func parsePathStep(s string) (pathStep, string, error) {
	if t, ok := strings.CutPrefix(s, ".."); ok {
		sel, rest, err := parsePathName(t)
		if err != nil {
			return nil, s, fmt.Errorf("invalid ..name: %w", err)
		}
		return recurStep(sel), rest, nil
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		sel, rest, err := parsePathName(t)
		if err != nil {
			return nil, s, fmt.Errorf("invalid .name: %w", err)
		}
		return sel, rest, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		sel, rest, err := parseSelector(t)
		if err != nil {
			return nil, s, err
		}
		rest, ok = strings.CutPrefix(rest, "]")
		if !ok {
			return nil, s, errors.New("missing close bracket")
		}
		return sel, rest, nil
	}
	return nil, s, errors.New("invalid path step")
}

func parsePathName(s string) (pathStep, string, error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return childStep, t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return memberStep(m[1]), s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return memberStep(m[1]), s[len(m[0]):], nil
	}
	return nil, s, errors.New("invalid name")
}

func parseSelector(s string) (pathStep, string, error) {
	if strings.HasPrefix(s, "?(") || strings.HasPrefix(s, "(") {
		return nil, s, errors.New("filter and script selectors are not supported")
	}
	if m := sliceRE.FindStringSubmatch(s); m != nil {
		lo, hi := m[1], m[2]
		return sliceStep(lo, hi), s[len(m[0]):], nil
	}
	if m := indexRE.FindStringSubmatch(s); m != nil {
		var idx []int
		for _, f := range strings.Split(m[1], ",") {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, s, fmt.Errorf("invalid index %q", f)
			}
			idx = append(idx, n)
		}
		return indexStep(idx), s[len(m[0]):], nil
	}
	return parsePathName(s)
}

func memberStep(key string) pathStep {
	return func(v ast.Value, out []ast.Value) []ast.Value {
		if obj, ok := v.(*ast.Object); ok {
			if m := obj.Find(key); m != nil {
				out = append(out, m.Value)
			}
		}
		return out
	}
}

func childStep(v ast.Value, out []ast.Value) []ast.Value {
	switch t := v.(type) {
	case *ast.Object:
		for _, m := range t.All() {
			out = append(out, m)
		}
	case *ast.Array:
		for _, elt := range t.All() {
			out = append(out, elt)
		}
	}
	return out
}

// recurStep applies sel to v and each of its descendants, in document order.
func recurStep(sel pathStep) pathStep {
	var walk pathStep
	walk = func(v ast.Value, out []ast.Value) []ast.Value {
		out = sel(v, out)
		for _, c := range childStep(v, nil) {
			out = walk(c, out)
		}
		return out
	}
	return walk
}

func indexStep(idx []int) pathStep {
	return func(v ast.Value, out []ast.Value) []ast.Value {
		arr, ok := v.(*ast.Array)
		if !ok {
			return out
		}
		for _, i := range idx {
			if i < 0 {
				i += arr.Len()
			}
			if elt := arr.At(i); elt != nil {
				out = append(out, elt)
			}
		}
		return out
	}
}

// sliceStep selects elements lo <= i < hi of an array. Either bound may be
// empty, and negative bounds count from the end. Bounds outside the array
// are clamped.
func sliceStep(lo, hi string) pathStep {
	bound := func(s string, n, def int) int {
		if s == "" {
			return def
		}
		i, _ := strconv.Atoi(s) // matched by sliceRE
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	return func(v ast.Value, out []ast.Value) []ast.Value {
		arr, ok := v.(*ast.Array)
		if !ok {
			return out
		}
		n := arr.Len()
		for i := bound(lo, n, 0); i < bound(hi, n, n); i++ {
			out = append(out, arr.At(i))
		}
		return out
	}
}
