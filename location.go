package jtree

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A Position describes the line and column of a location in source text.
// The zero Position denotes an unknown location, as for values constructed
// by a program rather than parsed from text.
type Position struct {
	Line   int // line number, 1-based
	Column int // rune offset of column in line, 1-based
}

// InitialPosition is the position of the first character of a document.
var InitialPosition = Position{Line: 1, Column: 1}

// IsValid reports whether p denotes a known location.
func (p Position) IsValid() bool { return p.Line > 0 && p.Column > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
