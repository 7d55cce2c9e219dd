// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

// shortEsc maps characters that have a two-character escape to the letter
// following the backslash.
var shortEsc = map[rune]byte{
	'"':  '"',
	'\\': '\\',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
}

const hexDigit = "0123456789abcdef"

// Quote encodes a string to escape characters for inclusion in a JSON string.
// The result does not include the enclosing quotation marks.
//
// The quotation mark, backslash, and the control characters with short
// escapes are written as two-character escapes; other control characters use
// a \u00XX escape. Invalid UTF-8 is replaced by U+FFFD.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len())
	for {
		i := plainPrefix(src)
		buf = mem.Append(buf, src.SliceTo(i))
		if i == src.Len() {
			return buf
		}
		r, n := mem.DecodeRune(src.SliceFrom(i))
		buf = appendEscaped(buf, r)
		src = src.SliceFrom(i + n)
	}
}

// plainPrefix returns the length of the longest prefix of src that can be
// copied to the output without change.
func plainPrefix(src mem.RO) int {
	i := 0
	for i < src.Len() {
		b := src.At(i)
		if b < utf8.RuneSelf {
			if b < ' ' || b == '"' || b == '\\' {
				return i
			}
			i++
			continue
		}
		r, n := mem.DecodeRune(src.SliceFrom(i))
		if (r == utf8.RuneError && n == 1) || r == '\u2028' || r == '\u2029' {
			return i
		}
		i += n
	}
	return i
}

func appendEscaped(buf []byte, r rune) []byte {
	if b, ok := shortEsc[r]; ok {
		return append(buf, '\\', b)
	}
	switch {
	case r < ' ':
		return append(buf, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
	case r == '\u2028': // line separator
		return append(buf, `\u2028`...)
	case r == '\u2029': // paragraph separator
		return append(buf, `\u2029`...)
	}
	return utf8.AppendRune(buf, utf8.RuneError)
}
