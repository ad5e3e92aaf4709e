// Package errors is the structured error type shared by every service
//
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrorCode classifies an error for callers and CLI output
// The rendered names are stable
type ErrorCode uint16

const (
	ErrorCodeUnknown         ErrorCode = iota
	ErrorCodeUnavailable               // transient; a retry may succeed
	ErrorCodeConflict                  // concurrent writers on the same change
	ErrorCodeInvalidArgument           // bad input such as a blank reason or a duplicate uuid
	ErrorCodeInvalidState              // broken internal invariant or unwired component
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
)

var codeNames = [...]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeConflict:        "conflict",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeInvalidState:    "invalid_state",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDuplicateKey:    "duplicate_key",
	ErrorCodeDB:              "db",
}

func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return codeNames[ErrorCodeUnknown]
}

// ErrNotFound is returned by single row reads that match nothing
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code, a message and optionally the offending field,
// the operation that failed and the wrapped cause
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	orig  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig != nil:
		return e.msg + ": " + e.orig.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error { return e.orig }

// Code is the error's classification
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending input, if any
func (e *Error) Field() string { return e.field }

// Op names the failed operation, if set
func (e *Error) Op() string { return e.op }

// MarshalZerologObject lets loggers record the error's metadata with Object
func (e *Error) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("code", e.code.String()).Str("message", e.msg)
	if e.field != "" {
		ev.Str("field", e.field)
	}
	if e.op != "" {
		ev.Str("op", e.op)
	}
	if e.orig != nil {
		ev.Str("cause", e.orig.Error())
	}
}

// Wire is the JSON form the CLIs print on failure
type Wire struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Op      string `json:"op,omitempty"`
}

// WireFrom converts any error; nil gives the zero Wire and foreign errors are unknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown.String(), Message: err.Error()}
	}
	return Wire{Code: e.code.String(), Message: e.msg, Field: e.field, Op: e.op}
}

// Root follows Unwrap to the innermost cause
func Root(err error) error {
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the outermost *Error, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) is code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// WithField returns a copy of err naming field; foreign errors pass through
func WithField(err error, field string) error {
	return mutate(err, func(c *Error) { c.field = field })
}

// WithOp returns a copy of err labelled with op, replacing any earlier label
// Foreign errors pass through
func WithOp(err error, op string) error {
	return mutate(err, func(c *Error) { c.op = op })
}

func mutate(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// New returns an *Error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap returns an *Error caused by orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf is Wrap with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func InvalidStatef(format string, a ...any) error { return Newf(ErrorCodeInvalidState, format, a...) }
func DuplicateKeyf(format string, a ...any) error { return Newf(ErrorCodeDuplicateKey, format, a...) }
func Conflictf(format string, a ...any) error     { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
func DBf(format string, a ...any) error           { return Newf(ErrorCodeDB, format, a...) }

// Retryable reports whether rerunning the failed transaction may succeed
func Retryable(err error) bool { return IsRetryable(err) }
