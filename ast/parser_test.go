// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/cabezudo/jtree"
	"github.com/cabezudo/jtree/ast"
	"github.com/cabezudo/jtree/internal/testutil"
	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	f, err := os.Open("../testdata/input.json")
	if err != nil {
		t.Fatalf("Opening test input: %v", err)
	}
	defer f.Close()

	v, err := ast.Options{Logger: testr.New(t)}.Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Inspect some of the structure of the test value to make sure we got
	// something approximating sense.
	//
	// If the testdata file changes, this may need to be updated.
	root, ok := v.(*ast.Object)
	if !ok {
		t.Fatalf("Root is %T, not object", v)
	}
	lst, err := root.DigArray("episodes")
	if err != nil {
		t.Fatalf("DigArray: %v", err)
	} else if lst.Len() != 3 {
		t.Fatalf("Got %d episodes, want 3", lst.Len())
	}
	ep, ok := lst.At(1).(*ast.Object)
	if !ok {
		t.Fatalf("Array entry is %T, not object", lst.At(1))
	}
	if got, err := ep.DigString("title"); err != nil || got != "Café at Midnight" {
		t.Errorf("title: got %q, %v", got, err)
	}
	if got, err := ep.DigInt("episode"); err != nil || got != 2 {
		t.Errorf("episode: got %d, %v", got, err)
	}
	if got, err := ep.DigBool("hasDetail"); err != nil || got {
		t.Errorf("hasDetail: got %v, %v", got, err)
	}
	if got, err := root.DigTime("updated"); err != nil || got.Year() != 2021 {
		t.Errorf("updated: got %v, %v", got, err)
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Value
	}{
		{"[]", ast.NewArray()},
		{"{}", ast.MustObject()},
		{" [ null ,true,false ] ", ast.NewArray(ast.NewNull(), ast.NewBool(true), ast.NewBool(false))},
		{`[-0.5e1, 12, 1E+2, 0.0000001]`, ast.NewArray(ast.NewInt(-5), ast.NewInt(12), ast.NewInt(100), ast.NewInt(0))},
		{`{"a": {"b": [{}]}}`, ast.MustObject(ast.Field("a", ast.MustObject(ast.Field("b", ast.NewArray(ast.MustObject())))))},
		{`["\u00e9\t\"", ""]`, ast.NewArray(ast.NewString("é\t\""), ast.NewString(""))},
		{"\n{\"k\"\n:\n\"v\"}\n", ast.MustObject(ast.Field("k", "v"))},
	}
	for _, tc := range tests {
		got, err := ast.ParseString(tc.input)
		if err != nil {
			t.Errorf("Parse %#q: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got, testutil.EquateValues); diff != "" {
			t.Errorf("Parse %#q (-want, +got):\n%s", tc.input, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	type lexical = *jtree.LexError
	type syntax = *jtree.SyntaxError

	tests := []struct {
		input string
		pos   jtree.Position
		lex   bool  // error is lexical rather than syntactic
		is    error // if non-nil, the error must match this
	}{
		// Top-level shape.
		{"", jtree.Position{Line: 1, Column: 1}, false, jtree.ErrEmptyQueue},
		{"  \n ", jtree.Position{Line: 1, Column: 1}, false, jtree.ErrEmptyQueue},
		{`"x"`, jtree.Position{Line: 1, Column: 1}, false, nil},
		{`  17`, jtree.Position{Line: 1, Column: 3}, false, nil},
		{`null`, jtree.Position{Line: 1, Column: 1}, false, nil},
		{`{} []`, jtree.Position{Line: 1, Column: 4}, false, nil},
		{"[1]\n2", jtree.Position{Line: 2, Column: 1}, false, nil},

		// Incomplete input reports the end of the input.
		{`[1, 2`, jtree.Position{Line: 1, Column: 6}, false, jtree.ErrEmptyQueue},
		{`{"a":`, jtree.Position{Line: 1, Column: 6}, false, jtree.ErrEmptyQueue},
		{"{\n", jtree.Position{Line: 2, Column: 1}, false, jtree.ErrEmptyQueue},

		// Misplaced tokens.
		{`{"a" 1}`, jtree.Position{Line: 1, Column: 6}, false, nil},
		{`[1 2]`, jtree.Position{Line: 1, Column: 4}, false, nil},
		{`[1,]`, jtree.Position{Line: 1, Column: 4}, false, nil},
		{`{,}`, jtree.Position{Line: 1, Column: 2}, false, nil},
		{`{"a":1,}`, jtree.Position{Line: 1, Column: 8}, false, nil},
		{`{1:2}`, jtree.Position{Line: 1, Column: 2}, false, nil},
		{`[}`, jtree.Position{Line: 1, Column: 2}, false, nil},
		{`{"a":1]`, jtree.Position{Line: 1, Column: 7}, false, nil},

		// Duplicate keys are reported at the second occurrence.
		{`{"a":1,"a":2}`, jtree.Position{Line: 1, Column: 8}, false, ast.ErrDuplicateKey},
		{"{\"x\": {\"a\": 1,\n  \"a\": 2}}", jtree.Position{Line: 2, Column: 3}, false, ast.ErrDuplicateKey},

		// Lexical errors pass through.
		{`[tru]`, jtree.Position{Line: 1, Column: 2}, true, nil},
		{`[1, @]`, jtree.Position{Line: 1, Column: 5}, true, nil},
		{`["abc`, jtree.Position{Line: 1, Column: 6}, true, nil},
		{`[01]`, jtree.Position{Line: 1, Column: 2}, true, nil},
		{"[1] // no", jtree.Position{Line: 1, Column: 5}, true, nil},
	}
	for _, tc := range tests {
		got, err := ast.ParseString(tc.input)
		if err == nil {
			t.Errorf("Parse %#q: got %v, want error", tc.input, got)
			continue
		}
		var pos jtree.Position
		if le, ok := err.(lexical); ok {
			if !tc.lex {
				t.Errorf("Parse %#q: got lexical error %v, want syntax error", tc.input, err)
			}
			pos = le.Pos
		} else if se, ok := err.(syntax); ok {
			if tc.lex {
				t.Errorf("Parse %#q: got syntax error %v, want lexical error", tc.input, err)
			}
			pos = se.Pos
		} else {
			t.Errorf("Parse %#q: got error %[2]T %[2]v, want lexical or syntax error", tc.input, err)
			continue
		}
		if pos != tc.pos {
			t.Errorf("Parse %#q: got error at %v, want %v (%v)", tc.input, pos, tc.pos, err)
		}
		if tc.is != nil && !errors.Is(err, tc.is) {
			t.Errorf("Parse %#q: got %v, want %v", tc.input, err, tc.is)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	opts := ast.Options{MaxDepth: 2}
	if _, err := opts.ParseString(`[{"a": 1}, [2]]`); err != nil {
		t.Errorf("Parse at max depth: unexpected error: %v", err)
	}

	_, err := opts.ParseString(`[[{"a": []}]]`)
	if !errors.Is(err, ast.ErrTooDeep) {
		t.Fatalf("Parse: got %v, want %v", err, ast.ErrTooDeep)
	}
	var se *jtree.SyntaxError
	if !errors.As(err, &se) || se.Pos != (jtree.Position{Line: 1, Column: 3}) {
		t.Errorf("Parse: got %v, want error at 1:3", err)
	}

	nest := func(n int) string { return strings.Repeat("[", n) + strings.Repeat("]", n) }

	// The default limit admits DefaultMaxDepth levels and no more.
	if _, err := ast.ParseString(nest(ast.DefaultMaxDepth)); err != nil {
		t.Errorf("Parse at default depth: unexpected error: %v", err)
	}
	if _, err := ast.ParseString(nest(ast.DefaultMaxDepth + 1)); !errors.Is(err, ast.ErrTooDeep) {
		t.Errorf("Parse beyond default depth: got %v, want %v", err, ast.ErrTooDeep)
	}

	// Very deep input fails cleanly rather than exhausting the stack.
	if _, err := ast.ParseString(nest(200_000)); !errors.Is(err, ast.ErrTooDeep) {
		t.Errorf("Parse very deep: got %v, want %v", err, ast.ErrTooDeep)
	}

	// A negative limit disables the check.
	unlimited := ast.Options{MaxDepth: -1}
	if _, err := unlimited.ParseString(nest(ast.DefaultMaxDepth + 5)); err != nil {
		t.Errorf("Parse unlimited: unexpected error: %v", err)
	}
}

func TestAllowComments(t *testing.T) {
	const input = `{
  // The name of the thing.
  "name": "widget", /* inline */
  "sizes": [1, 2, 3,],
  "ok": true,
}`
	if _, err := ast.ParseString(input); err == nil {
		t.Error("Parse with comments: got nil error, want error")
	}

	v, err := ast.Options{AllowComments: true}.ParseString(input)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := testutil.MustParse(`{"name": "widget", "sizes": [1, 2, 3], "ok": true}`)
	if diff := cmp.Diff(want, v, testutil.EquateValues); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}

	// Comments do not disturb the positions of other tokens.
	obj := v.(*ast.Object)
	if got, want := obj.Find("sizes").Pos(), (jtree.Position{Line: 4, Column: 3}); got != want {
		t.Errorf("Position of sizes: got %v, want %v", got, want)
	}
	if got, want := obj.Find("ok").Pos(), (jtree.Position{Line: 5, Column: 3}); got != want {
		t.Errorf("Position of ok: got %v, want %v", got, want)
	}

	_, err = (ast.Options{AllowComments: true}).ParseString(`{"a": /* open`)
	var se *jtree.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("Parse unterminated comment: got %[1]T %[1]v, want *jtree.SyntaxError", err)
	} else if se.Pos.Line != 1 || !se.Pos.IsValid() {
		t.Errorf("Parse unterminated comment: got error at %v, want line 1", se.Pos)
	}
}

func TestCommentColumns(t *testing.T) {
	// Multibyte runes in a comment count as one column each.
	const input = `{/* café ☃ */ "a": 1, "b": [2,],}`
	v, err := ast.Options{AllowComments: true}.ParseString(input)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	obj := v.(*ast.Object)
	if got, want := obj.Find("a").Pos(), (jtree.Position{Line: 1, Column: 15}); got != want {
		t.Errorf("Position of a: got %v, want %v", got, want)
	}
	if got, want := obj.Find("b").Pos(), (jtree.Position{Line: 1, Column: 23}); got != want {
		t.Errorf("Position of b: got %v, want %v", got, want)
	}
}

func TestParseQueue(t *testing.T) {
	q, err := jtree.Tokenize(`{"a": [true]}`)
	if err != nil {
		t.Fatalf("Tokenize: unexpected error: %v", err)
	}
	v, err := ast.Options{}.ParseQueue(q)
	if err != nil {
		t.Fatalf("ParseQueue: unexpected error: %v", err)
	}
	if got, want := v.JSON(), `{ "a": [ true ] }`; got != want {
		t.Errorf("ParseQueue: got %#q, want %#q", got, want)
	}
	if q.Len() != 0 {
		t.Errorf("ParseQueue left %d tokens", q.Len())
	}
}

func TestParseLogging(t *testing.T) {
	var msgs []string
	log := funcr.New(func(prefix, args string) {
		msgs = append(msgs, args)
	}, funcr.Options{Verbosity: 1})

	if _, err := (ast.Options{Logger: log}).ParseString(`{"a": [1, 2], "b": {}}`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	var objects, arrays int
	for _, msg := range msgs {
		if strings.Contains(msg, `"msg"="parsed object"`) {
			objects++
		} else if strings.Contains(msg, `"msg"="parsed array"`) {
			arrays++
		}
	}
	// The empty object closes without logging.
	if objects != 1 || arrays != 1 {
		t.Errorf("Got %d object and %d array logs, want 1 each:\n%s", objects, arrays, strings.Join(msgs, "\n"))
	}
}
