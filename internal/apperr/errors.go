// Package apperr defines the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status. Conflicts are reported as 400,
// which is what existing clients of the booking API expect.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-facing message and the optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	pcs     []uintptr
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Stack renders the frames captured when the error was created.
func (e *Error) Stack() string {
	if len(e.pcs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Error: " + e.Message)
	frames := runtime.CallersFrames(e.pcs)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func newError(kind Kind, msg string, err error) *Error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	return &Error{Kind: kind, Message: msg, Err: err, pcs: pcs[:n]}
}

func Unauthorized(msg string) *Error   { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error      { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error       { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error       { return newError(KindConflict, msg, nil) }
func InvalidRequest(msg string) *Error { return newError(KindInvalidRequest, msg, nil) }

// Internal wraps an unexpected failure; msg is what the client sees.
func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
