// Package errs defines the typed error every service, middleware and handler
// hands back to the HTTP layer.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// GenericMessage is what clients see for anything internal.
const GenericMessage = "An error occurred"

// Error carries a user-facing Msg, the operation that failed and an optional cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Op != "":
		return e.Op + ": " + e.Msg
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func BadRequest(op, msg string) *Error   { return E(KindBadRequest, op, msg, nil) }
func Unauthorized(op, msg string) *Error { return E(KindUnauthorized, op, msg, nil) }
func Forbidden(op, msg string) *Error    { return E(KindForbidden, op, msg, nil) }
func NotFound(op, msg string) *Error     { return E(KindNotFound, op, msg, nil) }
func Conflict(op, msg string) *Error     { return E(KindConflict, op, msg, nil) }

func Internal(op string, err error) *Error {
	return E(KindInternal, op, GenericMessage, err)
}

// Internalf is Internal with a specific client-facing message.
func Internalf(op, msg string, err error) *Error {
	return E(KindInternal, op, msg, err)
}

// From returns err as *Error, wrapping anything untyped as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("", err)
}

// KindOf reports the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public is the message safe to show to a client. Msg is always
// client-facing; causes stay in Err and only reach the log.
func Public(err error) string {
	e := From(err)
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return GenericMessage
	}
	return e.Msg
}
