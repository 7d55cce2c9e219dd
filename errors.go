// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtree

import (
	"errors"
	"fmt"
)

// ErrEmptyQueue is reported when a token is required but the queue has no
// more tokens to deliver.
var ErrEmptyQueue = errors.New("token queue is empty")

// LexError is the concrete type of errors reported by the scanner.
type LexError struct {
	Pos     Position
	Message string

	err error
}

// Error satisfies the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Pos, e.Message)
}

// Unwrap supports error wrapping.
func (e *LexError) Unwrap() error { return e.err }

// SyntaxError is the concrete type of errors reported by the parser.
type SyntaxError struct {
	Pos     Position
	Message string

	err error
}

// NewSyntaxError constructs a syntax error at pos with the given message.
// If err != nil, the result wraps it.
func NewSyntaxError(pos Position, err error, msg string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(msg, args...), err: err}
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Pos, e.Message)
}

// Unwrap supports error wrapping.
func (e *SyntaxError) Unwrap() error { return e.err }
