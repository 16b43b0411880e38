package view

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures surfaced by the engines.
type ErrorKind string

const (
	// KindValidation marks rejected mutations (bad page size, unknown column, page out of range).
	KindValidation ErrorKind = "validation"
	// KindTransport marks network failures, timeouts, non-success statuses
	// and responses carrying a server-side error field.
	KindTransport ErrorKind = "transport"
	// KindMalformed marks responses whose rows do not resolve to a sequence.
	KindMalformed ErrorKind = "malformed"
	// KindConfig marks construction-time misconfiguration.
	KindConfig ErrorKind = "config"
)

// Error is the typed error used across the table engines.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Op, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a kind and operation. A nil err returns nil.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
