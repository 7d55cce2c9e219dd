package ast_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cabezudo/jtree"
	"github.com/cabezudo/jtree/ast"
	"github.com/shopspring/decimal"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
		exp   int32
	}{
		{"0", "0", 0},
		{"0.000000", "0", 0},
		{"-0.0", "0", 0},
		{"0e10", "0", 0},
		{"2.5", "2.5", -1},
		{"2.500000", "2.5", -1},
		{"25e-1", "2.5", -1},
		{"100", "100", 2},
		{"1e2", "100", 2},
		{"1.0000001", "1", 0},
		{"1.0000005", "1.000001", -6},
		{"-1.0000005", "-1.000001", -6},
		{"0.1234564", "0.123456", -6},
		{"0.0000004", "0", 0},
		{"0.0000005", "0.000001", -6},
		{"-0.0000005", "-0.000001", -6},
		{"1e-300", "0", 0},
		{"123.456e-1", "12.3456", -4},
		{"-17", "-17", 0},
	}
	for _, tc := range tests {
		d := ast.Canonical(decimal.RequireFromString(tc.input))
		if got := d.String(); got != tc.want {
			t.Errorf("Canonical(%s): got %s, want %s", tc.input, got, tc.want)
		}
		if got := d.Exponent(); got != tc.exp {
			t.Errorf("Canonical(%s): got exponent %d, want %d", tc.input, got, tc.exp)
		}

		// Canonicalizing again does not change the representation.
		again := ast.Canonical(d)
		if again.String() != d.String() || again.Exponent() != d.Exponent() ||
			again.Coefficient().Cmp(d.Coefficient()) != 0 {
			t.Errorf("Canonical(%s) is not idempotent: %v then %v", tc.input, d, again)
		}
	}
}

func TestNumberEquivalence(t *testing.T) {
	a, err := ast.ParseNumber("2.500000")
	if err != nil {
		t.Fatalf("ParseNumber: unexpected error: %v", err)
	}
	b, err := ast.ParseNumber("2.5")
	if err != nil {
		t.Fatalf("ParseNumber: unexpected error: %v", err)
	}
	if a.JSON() != "2.5" || b.JSON() != "2.5" {
		t.Errorf("JSON: got %q and %q, want 2.5", a.JSON(), b.JSON())
	}
	if a.Decimal().Exponent() != b.Decimal().Exponent() ||
		a.Decimal().Coefficient().Cmp(b.Decimal().Coefficient()) != 0 {
		t.Errorf("Representations differ: %v vs. %v", a.Decimal(), b.Decimal())
	}
	if !ast.Equal(a, b) {
		t.Error("Equal: got false, want true")
	}
}

func TestNewFloat(t *testing.T) {
	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if n, err := ast.NewFloat(bad); err == nil {
			t.Errorf("NewFloat(%v): got %v, want error", bad, n)
		}
	}
	n, err := ast.NewFloat(0.1)
	if err != nil {
		t.Fatalf("NewFloat(0.1): unexpected error: %v", err)
	}
	if got := n.JSON(); got != "0.1" {
		t.Errorf("NewFloat(0.1): got %s, want 0.1", got)
	}
}

func TestParseNumberRange(t *testing.T) {
	n, err := ast.ParseNumber("1e1000000")
	if err != nil {
		t.Fatalf("ParseNumber at limit: unexpected error: %v", err)
	}
	if got := n.Decimal().Exponent(); got != ast.MaxExponent {
		t.Errorf("Exponent: got %d, want %d", got, ast.MaxExponent)
	}
	for _, bad := range []string{"1e1000001", "1e999999999", "25e1000001"} {
		if _, err := ast.ParseNumber(bad); !errors.Is(err, ast.ErrNumberRange) {
			t.Errorf("ParseNumber(%q): got %v, want %v", bad, err, ast.ErrNumberRange)
		}
	}

	// Trailing zeroes count toward the exponent, not against it.
	if _, err := ast.ParseNumber("1000e999997"); err != nil {
		t.Errorf("ParseNumber(1000e999997): unexpected error: %v", err)
	}

	_, err = ast.ParseString(`[1e999999999]`)
	var se *jtree.SyntaxError
	if !errors.As(err, &se) || !errors.Is(err, ast.ErrNumberRange) {
		t.Errorf("Parse: got %v, want syntax error wrapping %v", err, ast.ErrNumberRange)
	} else if want := (jtree.Position{Line: 1, Column: 2}); se.Pos != want {
		t.Errorf("Parse: got error at %v, want %v", se.Pos, want)
	}
}

func TestCanonicalLongZeroRun(t *testing.T) {
	// A long run of trailing zeroes is stripped in one step.
	const zeros = 200000
	d := ast.Canonical(decimal.RequireFromString("1" + strings.Repeat("0", zeros) + ".5"))
	if got := d.Exponent(); got != -1 {
		t.Errorf("Canonical with fraction: got exponent %d, want -1", got)
	}
	d = ast.Canonical(decimal.RequireFromString("7" + strings.Repeat("0", zeros)))
	if c := d.Coefficient(); c.Int64() != 7 || d.Exponent() != zeros {
		t.Errorf("Canonical: got %v×10^%d, want 7×10^%d", c, d.Exponent(), zeros)
	}
	v, err := ast.ParseString("[3" + strings.Repeat("0", zeros) + "]")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if got := v.(*ast.Array).At(0).(*ast.Number).Decimal().Exponent(); got != zeros {
		t.Errorf("Parsed exponent: got %d, want %d", got, zeros)
	}
}

func TestParseNumberErrors(t *testing.T) {
	for _, bad := range []string{"", "abc", "1.2.3", "--1"} {
		if n, err := ast.ParseNumber(bad); err == nil {
			t.Errorf("ParseNumber(%q): got %v, want error", bad, n)
		}
	}
}
