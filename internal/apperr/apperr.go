package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies a domain error for transport mapping and logging.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindQuotaExceeded
	KindConflict
	KindNotFound
)

// Error is the domain error carried across service boundaries.
// Msg is safe to show to the end user; the wrapped cause is not.
type Error struct {
	Kind Kind
	Msg  string
	// Remaining carries quota information for KindQuotaExceeded.
	Remaining int
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Validation creates a user-visible input validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Unauthorized creates an authorization denial. The message is deliberately
// generic: it must not reveal whether the underlying resource exists.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Msg: "access denied"}
}

// Denied creates an authorization denial with a specific message, for cases
// where the caller is a legitimate party and the message leaks nothing
// (e.g. "conversation is no longer active").
func Denied(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// QuotaExceeded creates a throttle error carrying the remaining quota.
func QuotaExceeded(msg string, remaining int) *Error {
	return &Error{Kind: KindQuotaExceeded, Msg: msg, Remaining: remaining}
}

// Conflict marks a duplicate-insert race. Callers are expected to resolve it
// to the idempotent existing-row result instead of surfacing it.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// NotFound creates a missing-resource error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps repo/service errors onto HTTP status codes.
// Keeps handlers clean by centralizing the mapping.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindUnauthorized:
			return http.StatusForbidden
		case KindQuotaExceeded:
			return http.StatusTooManyRequests
		case KindConflict:
			return http.StatusConflict
		case KindNotFound:
			return http.StatusNotFound
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message safe to expose to the caller.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return "internal error"
}
