// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtree

import (
	"fmt"

	"github.com/creachadair/mds/queue"
)

// Kind is the type of a lexical token in the JSON grammar.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid Kind = iota // invalid token
	LBrace              // left brace "{"
	RBrace              // right brace "}"
	LSquare             // left square bracket "["
	RSquare             // right square bracket "]"
	Comma               // comma ","
	Colon               // colon ":"
	Integer             // number: integer with no fraction or exponent
	Number              // number with fraction and/or exponent
	String              // quoted string
	True                // constant: true
	False               // constant: false
	Null                // constant: null
)

var kindStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[v]
}

// IsLiteral reports whether k is a string, number, or constant token.
func (k Kind) IsLiteral() bool { return k >= Integer && k <= Null }

// A Token is a single lexical token of the input.
//
// For String tokens, Text is the decoded string with quotes removed and
// escapes replaced. For all other tokens Text is the source text.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
	Span Span
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("string %s", Quote(t.Text))
	case Integer, Number:
		return fmt.Sprintf("number %s", t.Text)
	default:
		return t.Kind.String()
	}
}

// A Queue is a first-in, first-out sequence of tokens.
// A Queue is typically constructed by Tokenize.
type Queue struct {
	toks queue.Queue[Token]
	end  Position
}

// NewQueue constructs a queue delivering toks in order. The end position is
// used to anchor errors reported once the queue is exhausted.
func NewQueue(end Position, toks ...Token) *Queue {
	q := &Queue{end: end}
	for _, tok := range toks {
		q.toks.Add(tok)
	}
	return q
}

// Len reports the number of tokens remaining in q.
func (q *Queue) Len() int { return q.toks.Len() }

// End reports the position just past the last token of the input.
func (q *Queue) End() Position { return q.end }

// Peek reports whether q is non-empty, and if so returns its next token
// without consuming it.
func (q *Queue) Peek() (Token, bool) { return q.toks.Peek(0) }

// Next consumes and returns the next token of q. If q is empty, Next
// reports ErrEmptyQueue.
func (q *Queue) Next() (Token, error) {
	tok, ok := q.toks.Pop()
	if !ok {
		return Token{}, ErrEmptyQueue
	}
	return tok, nil
}
