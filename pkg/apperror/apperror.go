package apperror

import (
	"errors"
	"maps"
)

// Kind classifies an error for the transport layer
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindInvalidOrExpired     Kind = "INVALID_OR_EXPIRED"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindConflict             Kind = "CONFLICT"
	KindValidation           Kind = "VALIDATION_ERROR"
	KindDeliveryFailure      Kind = "DELIVERY_FAILURE"
	KindLoginRequired        Kind = "LOGIN_REQUIRED"
	KindRegistrationRequired Kind = "REGISTRATION_REQUIRED"
	KindEmailMismatch        Kind = "EMAIL_MISMATCH"
	KindInternal             Kind = "INTERNAL_ERROR"
)

// Error is a classified application error.
//
// Two errors match under errors.Is when they share Kind and Message, so a
// sentinel decorated with WithDetail still matches the original sentinel.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	cause   error
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation is a shorthand for a validation error with field details
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: fields}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// WithDetail returns a copy of e carrying an extra detail
func (e *Error) WithDetail(key, value string) *Error {
	clone := *e
	clone.Details = make(map[string]string, len(e.Details)+1)
	maps.Copy(clone.Details, e.Details)
	clone.Details[key] = value
	return &clone
}

// KindOf reports the kind of the first classified error in err's chain.
// Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the classified error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
