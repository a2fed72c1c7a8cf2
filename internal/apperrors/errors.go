package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so handlers can map it to an HTTP status
// without string-matching error messages.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindConstraint
	KindPersistence
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConstraint:
		return "constraint"
	case KindPersistence:
		return "persistence"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// Error is a classified error. Wrapped causes remain reachable via errors.Is/As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Constraint(msg string, err error) *Error {
	return &Error{Kind: KindConstraint, Msg: msg, Err: err}
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

func Timeout(msg string, err error) *Error {
	return &Error{Kind: KindTimeout, Msg: msg, Err: err}
}

// IsKind reports whether err (or anything it wraps) is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
