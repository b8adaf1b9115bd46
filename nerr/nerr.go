// Package nerr defines the error kinds surfaced by the geometry-image
// core, per spec.md §7: InvalidArgument, FileError, NumericFailure,
// OutOfRange and Fatal. Readers, writers and constructors never partially
// populate their target; they return one of these wrapped in a plain error.
package nerr

import "fmt"

// Kind classifies an error so callers can branch on failure category
// without parsing message text.
type Kind int

const (
	// InvalidArgument covers wrong dimensions, a non-invertible affine,
	// an unsupported enum value, or mismatched field sizes.
	InvalidArgument Kind = iota
	// FileError covers a missing file, unsupported extension, bad magic,
	// truncated stream, or unsupported on-disk datatype.
	FileError
	// NumericFailure covers a solver that did not converge, a singular
	// matrix, or a NaN appearing in a geometry cache.
	NumericFailure
	// OutOfRange covers a query outside the image or past the end of a
	// reader stream.
	OutOfRange
	// Fatal covers an impossible precondition violation; only ever
	// raised from debug assertions, never from ordinary control flow.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case FileError:
		return "FileError"
	case NumericFailure:
		return "NumericFailure"
	case OutOfRange:
		return "OutOfRange"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned throughout this module.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "image.create"
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds an *Error around an existing cause.
func Wrap(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
