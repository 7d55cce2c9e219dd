// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"errors"
	"testing"

	"github.com/cabezudo/jtree/ast"
	"github.com/cabezudo/jtree/ast/cursor"
	"github.com/cabezudo/jtree/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

func TestCursor(t *testing.T) {
	v := testutil.MustObject(testJSON)
	list := v.Get("list").(*ast.Array)
	xyz := v.Get("xyz").(*ast.Object)

	tests := []struct {
		name string
		path []any
		want ast.Value
		fail bool
	}{
		{"NilInput", nil, v, false},
		{"NoMatch", []any{"nonesuch"}, v, true},
		{"WrongType", []any{11}, v, true},

		{"ArrayPos", []any{"list", 1}, list.At(1), false},
		{"ArrayNeg", []any{"list", -1}, list.At(1), false},
		{"ArrayDeep", []any{"list", 0, "x"}, ast.NewInt(1), false},
		{"ArrayRange", []any{"o", 25}, v.Get("o"), true},
		{"ObjPath", []any{"xyz", "d"}, xyz.Get("d"), false},
		{"ObjIndex", []any{"xyz", -1}, xyz.Get("q"), false},
		{"ObjOnScalar", []any{"y", "hello", "x"}, ast.NewString("there"), true},
		{"BadElement", []any{"y", 2.5}, v.Get("y"), true},

		{"FuncArray", []any{"o", testPathFunc}, ast.NewInt(2), false},
		{"FuncObj", []any{"xyz", testPathFunc}, ast.NewInt(3), false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc}, xyz.Get("d"), true},
		{"FuncReduce", []any{"list", ast.Reduce}, testutil.MustParse(`[{"x": 1}, {"x": 2}]`), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(v).Down(tc.path...)
			err := c.Err()
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Down %+v: unexpected error: %v", tc.path, err)
				}
			} else if tc.fail {
				t.Errorf("Down %+v: got %v, want error", tc.path, c.Value())
			}
			got := c.Value()
			if diff := cmp.Diff(tc.want, got, testutil.EquateValues); diff != "" {
				t.Errorf("Down %+v: wrong result (-want, +got):\n%s", tc.path, diff)
			} else if err == nil {
				t.Logf("Found %s OK", got.JSON())
			}
		})
	}
}

func TestCursorMoves(t *testing.T) {
	v := testutil.MustObject(testJSON)
	c := cursor.New(v)
	if !c.AtOrigin() {
		t.Error("New cursor is not at its origin")
	}
	c.Down("list", 0, "x")
	if got := len(c.Path()); got != 4 {
		t.Errorf("Path: got %d values, want 4", got)
	}
	if got := c.Up().Value(); got.Kind() != ast.KindObject {
		t.Errorf("Up: got %v, want object", got)
	}
	if got := c.Up().Up().Up().Up().Value(); got != ast.Value(v) {
		t.Errorf("Up past origin: got %v, want origin", got)
	}
	c.Down("nonesuch")
	if c.Err() == nil {
		t.Error("Down(nonesuch): got nil error")
	}
	c.Reset()
	if !c.AtOrigin() || c.Err() != nil {
		t.Errorf("Reset: at origin %v, error %v", c.AtOrigin(), c.Err())
	}
}

func TestPath(t *testing.T) {
	v := testutil.MustObject(testJSON)

	s, err := cursor.Path[*ast.String](v, "o", 1)
	if err != nil {
		t.Fatalf("Path: unexpected error: %v", err)
	} else if s.Value() != "yourself" {
		t.Errorf("Path: got %q, want yourself", s.Value())
	}
	if got, err := cursor.Path[*ast.Number](v, "o", 1); err == nil {
		t.Errorf("Path: got %v, want type error", got)
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input string
		want  []any
		fail  bool
	}{
		{"", nil, false},
		{"a", []any{"a"}, false},
		{"list.0.x", []any{"list", 0, "x"}, false},
		{"a.-1", []any{"a", -1}, false},
		{"a..b", nil, true},
		{"a.", nil, true},
	}
	for _, tc := range tests {
		got, err := cursor.ParsePath(tc.input)
		if tc.fail {
			if err == nil {
				t.Errorf("ParsePath(%q): got %v, want error", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePath(%q): unexpected error: %v", tc.input, err)
		} else if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParsePath(%q) (-want, +got):\n%s", tc.input, diff)
		}
	}
}

func testPathFunc(v ast.Value) (ast.Value, error) {
	switch t := v.(type) {
	case *ast.Array:
		return ast.NewInt(int64(t.Len())), nil
	case *ast.Object:
		return ast.NewInt(int64(t.Len())), nil
	default:
		return nil, errors.New("not a thing with length")
	}
}
