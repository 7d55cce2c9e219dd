// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// simpleEsc maps the letter after a backslash to the byte it denotes, for
// every escape other than \u.
var simpleEsc = map[byte]byte{
	'"': '"', '\\': '\\', '/': '/',
	'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
}

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// for the high half of a UTF-16 surrogate pair is combined with the escape of
// the low half that follows it; an unpaired surrogate decodes as the Unicode
// replacement rune. Unquote reports an error for an invalid or incomplete
// escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
		dec = mem.Append(dec, src.SliceTo(i))

		var n int
		var err error
		dec, n, err = appendUnescaped(dec, src.SliceFrom(i+1))
		if err != nil {
			return nil, err
		}
		src = src.SliceFrom(i + 1 + n)
	}
}

// appendUnescaped decodes the escape sequence at the front of esc, which
// follows a backslash, and appends the result to dec. It returns the updated
// slice and the number of bytes of esc consumed.
func appendUnescaped(dec []byte, esc mem.RO) ([]byte, int, error) {
	if esc.Len() == 0 {
		return nil, 0, errors.New("incomplete escape sequence")
	}
	c := esc.At(0)
	if b, ok := simpleEsc[c]; ok {
		return append(dec, b), 1, nil
	} else if c != 'u' {
		r, _ := mem.DecodeRune(esc)
		return nil, 0, fmt.Errorf("invalid escape %q", r)
	}

	hi, err := parseHex4(esc.SliceFrom(1))
	if err != nil {
		return nil, 0, err
	}
	if !utf16.IsSurrogate(hi) {
		return utf8.AppendRune(dec, hi), 5, nil
	}

	// A surrogate half is valid only when followed by \u and its partner.
	if rest := esc.SliceFrom(5); rest.Len() >= 6 && rest.At(0) == '\\' && rest.At(1) == 'u' {
		if lo, err := parseHex4(rest.SliceFrom(2)); err == nil {
			if r := utf16.DecodeRune(hi, lo); r != utf8.RuneError {
				return utf8.AppendRune(dec, r), 11, nil
			}
		}
	}
	return utf8.AppendRune(dec, utf8.RuneError), 5, nil
}

// parseHex4 decodes the four hexadecimal digits at the front of data.
func parseHex4(data mem.RO) (rune, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v rune
	for i := range 4 {
		d := hexValue(data.At(i))
		if d < 0 {
			return 0, fmt.Errorf("invalid hex digit %q", data.At(i))
		}
		v = v<<4 | d
	}
	return v, nil
}

func hexValue(b byte) rune {
	switch {
	case '0' <= b && b <= '9':
		return rune(b - '0')
	case 'a' <= b && b <= 'f':
		return rune(b-'a') + 10
	case 'A' <= b && b <= 'F':
		return rune(b-'A') + 10
	}
	return -1
}
