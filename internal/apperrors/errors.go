package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a collaborator failure so the orchestrator and the HTTP
// layer can react without inspecting raw transport errors.
type Kind int

const (
	KindInternal    Kind = iota
	KindInvalid          // request rejected by a business rule; safe to correct and resend
	KindNotFound         // referenced entity does not exist
	KindUnavailable      // network or upstream failure; the call may be retried
	KindRejected         // upstream provider explicitly declined the operation
)

// Error carries a classification, a message suitable for display, and the
// wrapped cause.
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

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string) *Error  { return &Error{Kind: KindInvalid, Message: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

func Rejected(msg string, err error) *Error {
	return &Error{Kind: KindRejected, Message: msg, Err: err}
}

// KindOf extracts the classification of err, or KindInternal when err was
// never classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the display message of a classified error, or a generic
// fallback for raw errors so transport details never leak to users.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "unexpected error"
}
