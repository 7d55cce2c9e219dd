// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtree

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cabezudo/jtree/internal/escape"

	"go4.org/mem"
)

// A Scanner reads lexical tokens from an input stream.  Each call to Next
// advances the scanner to the next token, or reports an error.
type Scanner struct {
	r   *bufio.Reader
	buf bytes.Buffer // current token
	tok Token
	err error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	start Position // position of the first rune of the current token
	cur   Position // position of the next unread rune
	prev  Position // position of the last-read rune
}

// NewScanner constructs a new lexical scanner that consumes input from r.
func NewScanner(r io.Reader) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br, cur: InitialPosition}
}

// Tokenize scans all of text and returns a queue of its tokens, or the
// first lexical error encountered.
func Tokenize(text string) (*Queue, error) { return TokenizeReader(strings.NewReader(text)) }

// TokenizeReader scans all the input from r and returns a queue of its
// tokens, or the first error encountered.
func TokenizeReader(r io.Reader) (*Queue, error) {
	s := NewScanner(r)
	q := new(Queue)
	for {
		if err := s.Next(); err == io.EOF {
			q.end = s.cur
			return q, nil
		} else if err != nil {
			return nil, err
		}
		q.toks.Add(s.tok)
	}
}

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.buf.Reset()
	s.err = nil
	s.tok = Token{}

	for {
		s.pos, s.start = s.end, s.cur
		ch, err := s.rune()
		if err == io.EOF {
			return s.setErr(err)
		} else if err != nil {
			return s.fail(err)
		}

		// Discard whitespace.
		if isSpace(ch) {
			continue
		}

		// Handle punctuation.
		if k, ok := selfDelim(ch); ok {
			s.buf.WriteRune(ch)
			return s.emit(k)
		}

		// Handle numbers.
		if isNumStart(ch) {
			return s.scanNumber(ch)
		}

		// Handle string values.
		if ch == '"' {
			return s.scanString()
		}

		// Handle constants: true, false, null
		var want mem.RO
		var kind Kind
		switch ch {
		case 't':
			kind, want = True, mem.S("true")
		case 'f':
			kind, want = False, mem.S("false")
		case 'n':
			kind, want = Null, mem.S("null")
		default:
			return s.failAt(s.prev, "unexpected %q", ch)
		}
		if err := s.scanName(ch); err != nil {
			return err
		} else if got := mem.B(s.buf.Bytes()); !got.Equal(want) {
			return s.failAt(s.start, "unknown constant %q", got.StringCopy())
		}
		return s.emit(kind)
	}
}

// Token returns the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Position returns the position of the next unread rune of the input.
func (s *Scanner) Position() Position { return s.cur }

func (s *Scanner) emit(kind Kind) error {
	s.tok = Token{
		Kind: kind,
		Text: s.buf.String(),
		Pos:  s.start,
		Span: Span{Pos: s.pos, End: s.end},
	}
	return nil
}

func (s *Scanner) scanString() error {
	s.buf.WriteByte('"')
	var esc bool
	for {
		ch, err := s.rune()
		if err == io.EOF {
			return s.failAt(s.cur, "unterminated string")
		} else if err != nil {
			return s.fail(err)
		}
		if esc {
			// We are awaiting the completion of a \-escape.
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.buf.WriteByte(byte(ch))
			case 'u':
				s.buf.WriteByte(byte(ch))
				if err := s.readHex4(); err != nil {
					return err
				}
			default:
				return s.failAt(s.prev, "invalid %q after escape", ch)
			}
			esc = false
			continue
		}
		if ch == '"' {
			s.buf.WriteByte('"')
			break
		} else if ch < ' ' {
			return s.failAt(s.prev, "unescaped control %q", ch)
		} else if ch == utf8.RuneError && s.last == 1 {
			return s.failAt(s.prev, "invalid UTF-8 encoding")
		}
		s.buf.WriteRune(ch)
		esc = ch == '\\'
	}

	raw := s.buf.Bytes()
	dec, err := escape.Unquote(mem.B(raw[1 : len(raw)-1]))
	if err != nil {
		return s.failAt(s.start, "invalid string: %w", err)
	}
	s.tok = Token{
		Kind: String,
		Text: string(dec),
		Pos:  s.start,
		Span: Span{Pos: s.pos, End: s.end},
	}
	return nil
}

func (s *Scanner) scanNumber(start rune) error {
	s.buf.WriteRune(start)

	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		ch, err := s.require(isDigit, "digit")
		if err != nil {
			return err
		}
		s.buf.WriteRune(ch)
	}

	// Consume the remainder of an integer.
	_, ch, err := s.readWhile(isDigit)
	if err != nil && err != io.EOF {
		return s.fail(err)
	}

	// Check for extra leading zeroes, which are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.buf.Bytes()) {
		return s.failAt(s.start, "extra leading zeroes")
	} else if err == io.EOF {
		return s.emit(Integer)
	}

	// If a decimal point follows, consume a fractional part.
	kind := Integer
	if ch == '.' {
		s.buf.WriteRune(ch)
		var nr int
		nr, ch, err = s.readWhile(isDigit)
		if err != nil && err != io.EOF {
			return s.fail(err)
		} else if nr == 0 {
			return s.failAt(s.here(err), "no digits after decimal point")
		}
		kind = Number
		if err == io.EOF {
			return s.emit(kind)
		}
	}

	// If an exponent follows, consume it.
	if ch != 'E' && ch != 'e' {
		s.unrune()
		return s.emit(kind)
	}

	s.buf.WriteRune(ch)
	ch, err = s.require(isExpStart, "sign or digit")
	if err != nil {
		return err
	}
	s.buf.WriteRune(ch)
	nr, _, err := s.readWhile(isDigit)
	if err != nil && err != io.EOF {
		return s.fail(err)
	} else if nr == 0 && (ch == '-' || ch == '+') {
		// It's OK to have no digits if the previous rune was not a sign,
		// otherwise we have to have at least one.
		return s.failAt(s.here(err), "missing exponent digits")
	}
	if err == nil {
		s.unrune()
	}
	return s.emit(Number)
}

func (s *Scanner) scanName(first rune) error {
	s.buf.WriteRune(first)
	_, _, err := s.readWhile(isNameRune)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return s.fail(err)
	}
	s.unrune()
	return nil
}

func (s *Scanner) rune() (rune, error) {
	ch, nb, err := s.r.ReadRune()
	if err != nil {
		s.last = 0
		return 0, err
	}
	s.last = nb
	s.end += nb
	s.prev = s.cur
	if ch == '\n' {
		s.cur.Line++
		s.cur.Column = 1
	} else {
		s.cur.Column++
	}
	return ch, nil
}

// unrune pushes back the last-read rune. It must only be called once after a
// successful call to rune.
func (s *Scanner) unrune() {
	s.end -= s.last
	s.cur = s.prev
	s.last = 0
	s.r.UnreadRune()
}

// here reports the position of the rune that stopped a scan, given the error
// reported when reading it.
func (s *Scanner) here(err error) Position {
	if err == io.EOF {
		return s.cur
	}
	return s.prev
}

// require reads a single rune matching f from the input, or returns an error
// mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, err := s.rune()
	if err == io.EOF {
		return 0, s.failAt(s.cur, "want %s, got end of input", label)
	} else if err != nil {
		return 0, s.fail(err)
	} else if !f(ch) {
		return 0, s.failAt(s.prev, "got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until EOF or until a rune
// not matching f is found. The first non-matching rune (if any) is returned.
// It is the caller's responsibility to unread this rune, if desired.
// The int reports the number of runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := s.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		s.buf.WriteRune(ch)
		nr++
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for i := 0; i < 4; i++ {
		ch, err := s.rune()
		if err == io.EOF {
			return s.failAt(s.cur, "incomplete Unicode escape")
		} else if err != nil {
			return s.fail(err)
		} else if !isHexDigit(ch) {
			return s.failAt(s.prev, "invalid Unicode escape: not a hex digit: %q", ch)
		}
		s.buf.WriteRune(ch)
	}
	return nil
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) fail(err error) error {
	return s.setErr(&LexError{Pos: s.cur, Message: err.Error(), err: err})
}

func (s *Scanner) failAt(pos Position, msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	return s.setErr(&LexError{Pos: pos, Message: err.Error(), err: err})
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, disallowed by the JSON grammar.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}

var self = [...]Kind{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Kind, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
