// internal/apperrors/apperrors.go

// Package apperrors defines the error taxonomy shared by services and
// handlers. Kinds map one-to-one onto HTTP responses so the client UI can
// tell an expired link apart from a missing one.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindPreconditionFailed marks user-facing, non-retryable gate
	// violations, e.g. issuing a signature link before the DDJJ exists.
	KindPreconditionFailed Kind = "precondition_failed"
	KindNotFound           Kind = "not_found"
	KindExpired            Kind = "expired"
	// KindUpstream marks a notification or e-signature provider failure.
	// The local write that preceded it is never rolled back.
	KindUpstream Kind = "upstream_failure"
	KindInternal Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsPreconditionFailed(err error) bool { return KindOf(err) == KindPreconditionFailed }
func IsNotFound(err error) bool           { return KindOf(err) == KindNotFound }
func IsExpired(err error) bool            { return KindOf(err) == KindExpired }
func IsUpstream(err error) bool           { return KindOf(err) == KindUpstream }
