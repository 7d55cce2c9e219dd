// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cabezudo/jtree"
	"github.com/go-logr/logr"
	"github.com/tailscale/hujson"
)

// ErrTooDeep is reported when the input nests arrays and objects more deeply
// than Options.MaxDepth permits.
var ErrTooDeep = errors.New("maximum nesting depth exceeded")

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Options control the behaviour of the parser.  A zero Options is ready for
// use and parses standard JSON.
type Options struct {
	// If true, accept JWCC input: comments and trailing commas are
	// permitted in arrays and objects.
	AllowComments bool

	// The maximum nesting depth of arrays and objects. If zero,
	// DefaultMaxDepth is used; if negative, nesting is not limited.
	MaxDepth int

	// If set, receives debug logs (V(1)) from the parser.
	Logger logr.Logger
}

// Parse parses a JSON document from r with default options.
func Parse(r io.Reader) (Value, error) { return Options{}.Parse(r) }

// ParseString parses a JSON document from s with default options.
func ParseString(s string) (Value, error) { return Options{}.ParseString(s) }

// ParseBytes parses a JSON document from data with default options.
func ParseBytes(data []byte) (Value, error) { return Options{}.ParseBytes(data) }

// Parse parses a JSON document from r. The document must be a single object
// or array; any other input is reported as an error. Lexical errors have
// concrete type *jtree.LexError, and syntax errors *jtree.SyntaxError.
func (o Options) Parse(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return o.ParseBytes(data)
}

// ParseString parses a JSON document from s.
func (o Options) ParseString(s string) (Value, error) { return o.ParseBytes([]byte(s)) }

// ParseBytes parses a JSON document from data.
func (o Options) ParseBytes(data []byte) (Value, error) {
	if o.AllowComments {
		std, err := standardize(data)
		if err != nil {
			return nil, err
		}
		data = std
	}
	q, err := jtree.TokenizeReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	o.Logger.V(1).Info("tokenized input", "bytes", len(data), "tokens", q.Len())
	return o.ParseQueue(q)
}

// ParseQueue parses a JSON document from the tokens in q.
func (o Options) ParseQueue(q *jtree.Queue) (Value, error) {
	limit := o.MaxDepth
	if limit == 0 {
		limit = DefaultMaxDepth
	}
	p := &parser{q: q, maxDepth: limit, log: o.Logger}
	return p.parseDocument()
}

// standardize converts JWCC input to standard JSON. Comments and trailing
// commas become blanks, one per rune, so that the lines and columns of the
// remaining tokens match the input.
func standardize(data []byte) ([]byte, error) {
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, jtree.NewSyntaxError(hujsonPos(data, err), err, "invalid JWCC input: %v", err)
	}
	if len(std) != len(data) {
		return std, nil
	}
	out := std[:0]
	for i, b := range std {
		if b == ' ' && data[i] != ' ' && !utf8.RuneStart(data[i]) {
			continue // blanked continuation byte of a multibyte rune
		}
		out = append(out, b)
	}
	return out, nil
}

// hujsonPos recovers the position of a hujson parse error, converting its
// byte column to a rune column. It returns InitialPosition if the error does
// not carry a position.
func hujsonPos(data []byte, err error) jtree.Position {
	var line, col int
	if _, serr := fmt.Sscanf(err.Error(), "hujson: line %d, column %d:", &line, &col); serr != nil || line < 1 || col < 1 {
		return jtree.InitialPosition
	}
	start := 0
	for range line - 1 {
		i := bytes.IndexByte(data[start:], '\n')
		if i < 0 {
			break
		}
		start += i + 1
	}
	end := min(start+col-1, len(data))
	return jtree.Position{Line: line, Column: utf8.RuneCount(data[start:end]) + 1}
}

type parser struct {
	q        *jtree.Queue
	maxDepth int
	depth    int
	log      logr.Logger
}

// parseDocument parses a complete top-level document.
func (p *parser) parseDocument() (Value, error) {
	tok, ok := p.q.Peek()
	if !ok {
		return nil, jtree.NewSyntaxError(jtree.InitialPosition, jtree.ErrEmptyQueue, "unexpected end of input")
	}
	if tok.Kind != jtree.LBrace && tok.Kind != jtree.LSquare {
		return nil, jtree.NewSyntaxError(tok.Pos, nil, "%s", kindLabel(topLevel, tok))
	}
	v, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	if extra, ok := p.q.Peek(); ok {
		return nil, jtree.NewSyntaxError(extra.Pos, nil, "unexpected %v after end of document", extra)
	}
	return v, nil
}

var topLevel = []jtree.Kind{jtree.LBrace, jtree.LSquare}

// parseElement consumes and returns a single value.
func (p *parser) parseElement() (Value, error) {
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case jtree.LBrace:
		return p.parseMembers(tok)
	case jtree.LSquare:
		return p.parseElements(tok)
	case jtree.Integer, jtree.Number:
		n, err := ParseNumber(tok.Text)
		if err != nil {
			return nil, jtree.NewSyntaxError(tok.Pos, err, "invalid number %q", tok.Text)
		}
		n.pos = tok.Pos
		return n, nil
	case jtree.String:
		return &String{node: node{tok.Pos}, value: tok.Text}, nil
	case jtree.True, jtree.False:
		return &Bool{node: node{tok.Pos}, value: tok.Kind == jtree.True}, nil
	case jtree.Null:
		return &Null{node{tok.Pos}}, nil
	default:
		return nil, jtree.NewSyntaxError(tok.Pos, nil, "unexpected %v", tok)
	}
}

// parseMembers consumes zero of more key:value object members.
// Precondition: open is the LBrace token, already consumed.
// Postcondition: the matching RBrace has been consumed.
func (p *parser) parseMembers(open jtree.Token) (Value, error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()

	obj := &Object{node: node{open.Pos}}
	key, err := p.advance(jtree.RBrace, jtree.String)
	if err != nil {
		return nil, err
	} else if key.Kind == jtree.RBrace {
		return obj, nil // end of object
	}
	for {
		// Parse a single member: "key": value
		if _, err := p.advance(jtree.Colon); err != nil {
			return nil, err
		}
		v, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		if err := obj.add(&Member{pos: key.Pos, key: key.Text, Value: v}); err != nil {
			return nil, jtree.NewSyntaxError(key.Pos, err, "duplicate key %s", jtree.Quote(key.Text))
		}

		// Check whether we have more members (",") or are done ("}").
		tok, err := p.advance(jtree.RBrace, jtree.Comma)
		if err != nil {
			return nil, err
		} else if tok.Kind == jtree.RBrace {
			p.log.V(1).Info("parsed object", "pos", open.Pos.String(), "members", obj.Len())
			return obj, nil
		}
		key, err = p.advance(jtree.String) // advance to next key
		if err != nil {
			return nil, err
		}
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: open is the LSquare token, already consumed.
// Postcondition: the matching RSquare has been consumed.
func (p *parser) parseElements(open jtree.Token) (Value, error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()

	arr := &Array{node: node{open.Pos}}
	if tok, ok := p.q.Peek(); ok && tok.Kind == jtree.RSquare {
		p.q.Next()
		return arr, nil // end of array
	}
	for {
		v, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		arr.values = append(arr.values, v)

		tok, err := p.advance(jtree.RSquare, jtree.Comma)
		if err != nil {
			return nil, err
		} else if tok.Kind == jtree.RSquare {
			p.log.V(1).Info("parsed array", "pos", open.Pos.String(), "elements", arr.Len())
			return arr, nil
		}
	}
}

func (p *parser) enter(open jtree.Token) error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return jtree.NewSyntaxError(open.Pos, ErrTooDeep, "nesting depth exceeds %d", p.maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// advance consumes the next token from the queue. If kinds are given, the
// token must have one of those kinds.
func (p *parser) advance(kinds ...jtree.Kind) (jtree.Token, error) {
	tok, err := p.q.Next()
	if err != nil {
		return tok, jtree.NewSyntaxError(p.q.End(), err, "%s", kindLabel(kinds, "end of input"))
	}
	if len(kinds) != 0 && !slices.Contains(kinds, tok.Kind) {
		return tok, jtree.NewSyntaxError(tok.Pos, nil, "%s", kindLabel(kinds, tok))
	}
	return tok, nil
}

// kindLabel makes a human-readable summary string for the given token kinds.
func kindLabel(kinds []jtree.Kind, got any) string {
	if len(kinds) == 0 {
		return fmt.Sprint("unexpected ", got)
	}
	var exp string
	if len(kinds) == 1 {
		exp = kinds[0].String()
	} else {
		last := len(kinds) - 1
		ss := make([]string, last)
		for i, k := range kinds[:last] {
			ss[i] = k.String()
		}
		exp = strings.Join(ss, ", ") + " or " + kinds[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
