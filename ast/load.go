package ast

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrRead is matched by every *ReadError.
var ErrRead = errors.New("read failed")

// ReadError is the concrete type of errors reported when source text cannot
// be read or decoded. Errors from parsing the text are reported separately.
type ReadError struct {
	Path string // the file path, if known
	Err  error  // the underlying failure
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read: %v", e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap supports error wrapping.
func (e *ReadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// ParseFile reads the file at path, decodes its contents from the named text
// encoding, and parses the result with default options.
func ParseFile(path, encoding string) (Value, error) { return Options{}.ParseFile(path, encoding) }

// ParseFile reads the file at path, decodes its contents from the named text
// encoding, and parses the result.
//
// The encoding is an IANA character set name such as "UTF-8" or
// "ISO-8859-1"; if it is empty, UTF-8 is assumed. A failure to read or
// decode the file is reported as a *ReadError.
func (o Options) ParseFile(path, encoding string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	text, err := decodeText(data, encoding)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	o.Logger.V(1).Info("read input file", "path", path, "encoding", encoding, "bytes", len(data))
	return o.ParseBytes(text)
}

// ParseEncoded decodes data from the named text encoding, as ParseFile does,
// and parses the result. A failure to decode is reported as a *ReadError.
func (o Options) ParseEncoded(data []byte, encoding string) (Value, error) {
	text, err := decodeText(data, encoding)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return o.ParseBytes(text)
}

// decodeText converts data from the named encoding to UTF-8.
func decodeText(data []byte, name string) ([]byte, error) {
	if name == "" {
		name = "UTF-8"
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	} else if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc.NewDecoder().Bytes(data)
}
