// Defines the error kinds surfaced by the store.

package jsondb

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is the kind of filesystem failures other than "file not found".
	ErrIO = errors.New("jsondb: I/O error")
	// ErrEncoding is the kind of failures to serialize or compress a value.
	ErrEncoding = errors.New("jsondb: encoding error")
	// ErrDecoding is the kind of failures to decompress or parse stored bytes.
	ErrDecoding = errors.New("jsondb: decoding error")

	// ErrInvalidIdentity is returned when a record identity cannot name a file.
	ErrInvalidIdentity = errors.New("jsondb: invalid identity")
	// ErrIdentityConflict is returned when one identity is bound to two record types.
	ErrIdentityConflict = errors.New("jsondb: identity already bound to another type")
)

// OpError describes a failed store operation.
//
// Use errors.Is with ErrIO, ErrEncoding or ErrDecoding to classify it. The
// underlying cause (e.g. fs.ErrPermission or a *json.SyntaxError) is reachable
// through errors.Is and errors.As as well.
type OpError struct {
	Op   string // "get_one", "push", ...
	Path string
	Kind error // one of ErrIO, ErrEncoding, ErrDecoding
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns both the kind sentinel and the cause.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// annotate attaches the operation and path to err. Errors that are not
// already an *OpError are filesystem failures.
func annotate(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return &OpError{Op: op, Path: path, Kind: oe.Kind, Err: oe.Err}
	}
	return &OpError{Op: op, Path: path, Kind: ErrIO, Err: err}
}
