package types

import (
	"errors"
	"fmt"
)

// CodeInternal is reported for failures that are not domain errors.
const CodeInternal = "internal"

// ErrorKind groups domain errors by how a caller should react to them.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindUnavailable       ErrorKind = "unavailable"
)

// Error is a tagged domain error. Sentinels below are compared with
// errors.Is; InvalidInputf builds detailed copies that still match
// ErrInvalidInput.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrRequestNotFound      = newError(KindNotFound, "request_not_found", "request not found")
	ErrRequestNotModifiable = newError(KindInvalidTransition, "request_not_modifiable", "request not found or can't be modified")
	ErrAlreadyCompleted     = newError(KindInvalidTransition, "request_already_completed", "request is already completed")
	ErrInvalidTransition    = newError(KindInvalidTransition, "invalid_transition", "request can't be completed from its current status")
	ErrRequestNotOpen       = newError(KindInvalidTransition, "request_not_open", "request is not open for applications")
	ErrApplicationExists    = newError(KindConflict, "application_already_exists", "application already exists")
	ErrApplicationNotFound  = newError(KindNotFound, "application_not_found", "application not found")
	ErrCanNotWithdraw       = newError(KindInvalidTransition, "can_not_withdraw", "application has already been resolved")
	ErrNoRequestFound       = newError(KindNotFound, "no_request_found", "request or application not found")
	ErrCanNotAccept         = newError(KindConflict, "can_not_accept_application", "cannot accept application for request")
	ErrCannotBeRated        = newError(KindInvalidTransition, "application_cannot_be_rated", "application not found or can't be rated")
	ErrUnauthenticated      = newError(KindUnauthenticated, "unauthenticated", "authentication required")
	ErrForbidden            = newError(KindForbidden, "forbidden", "not allowed for this role")
	ErrInvalidInput         = newError(KindInvalidInput, "invalid_input", "invalid input")
	ErrStoreUnavailable     = newError(KindUnavailable, "store_unavailable", "store temporarily unavailable, retry")
	ErrUserNotFound         = newError(KindNotFound, "user_not_found", "user not found")
	ErrIdentityUnavailable  = newError(KindUnavailable, "identity_unavailable", "identity provider unavailable, retry")
)

// InvalidInputf returns an error matching ErrInvalidInput with a specific message.
func InvalidInputf(format string, args ...any) error {
	return newError(KindInvalidInput, ErrInvalidInput.Code, fmt.Sprintf(format, args...))
}

// AsError extracts the domain error from err. Errors that are not domain
// errors come back as an internal error with ok set to false.
func AsError(err error) (e *Error, ok bool) {
	if errors.As(err, &e) {
		return e, true
	}
	return &Error{Code: CodeInternal, Message: "internal error"}, false
}
