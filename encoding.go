// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtree

import (
	"errors"
	"strings"

	"github.com/cabezudo/jtree/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	esc := escape.Quote(mem.S(src))
	buf := make([]byte, 0, len(esc)+2)
	buf = append(buf, '"')
	buf = append(buf, esc...)
	return string(append(buf, '"'))
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence.
func Unquote(src string) (string, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.Unquote(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
