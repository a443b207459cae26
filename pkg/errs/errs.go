// Package errs defines the typed error taxonomy shared by the engine
// services. Handlers translate kinds into HTTP status classes; services
// return them uninterpreted.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine error.
type Kind int

const (
	// KindUnknown covers unexpected failures; boundaries must not leak detail.
	KindUnknown Kind = iota
	// KindValidation marks malformed or out-of-range input the caller can fix.
	KindValidation
	// KindNotFound marks an identifier that does not resolve.
	KindNotFound
	// KindInvalidTransition marks a state-machine rule violation, including
	// a compare-and-set that lost to a concurrent write.
	KindInvalidTransition
	// KindForbidden marks a caller lacking the department or role scope.
	KindForbidden
)

// Error is a kind-tagged engine error.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// New builds an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap tags an underlying error with a kind and message.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{kind: kind, msg: msg, err: err}
}

func Validationf(format string, args ...interface{}) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...interface{}) error {
	return &Error{kind: KindInvalidTransition, msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// HTTPStatus maps an error kind to the HTTP status the boundary returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err. Untagged errors map to
// an opaque message so internal state never leaks to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return "internal server error"
}
