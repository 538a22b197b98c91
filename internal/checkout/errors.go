package checkout

import (
	"errors"
	"fmt"

	"enrollment-app/internal/apperrors"
)

// ErrTransitionInFlight is returned when a triggering action arrives while a
// network-calling transition is still running. The caller disables the
// control and waits; nothing is queued.
var ErrTransitionInFlight = errors.New("checkout transition already in flight")

// Class sorts every failure into the handful of reactions the UI supports.
type Class int

const (
	// ClassUserCorrectable: shown inline, the flow stays where it is.
	ClassUserCorrectable Class = iota + 1
	// ClassTransient: shown with a retry affordance; never auto-retried.
	ClassTransient
	// ClassIntegrity: this attempt cannot continue; start a fresh checkout.
	ClassIntegrity
	// ClassFatal: no retry path at all for this plan.
	ClassFatal
)

// FlowError is the only error shape that crosses the orchestrator boundary.
// Raw transport errors stay wrapped inside.
type FlowError struct {
	Class  Class
	Reason string
	Err    error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FlowError) Unwrap() error { return e.Err }

// classify converts a collaborator error into a FlowError, falling back to
// the given reason when the error carries no displayable message.
func classify(err error, fallbackReason string) *FlowError {
	reason := apperrors.MessageOf(err)
	if reason == "unexpected error" {
		reason = fallbackReason
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalid, apperrors.KindNotFound:
		return &FlowError{Class: ClassUserCorrectable, Reason: reason, Err: err}
	case apperrors.KindUnavailable, apperrors.KindRejected:
		return &FlowError{Class: ClassTransient, Reason: reason, Err: err}
	default:
		return &FlowError{Class: ClassTransient, Reason: fallbackReason, Err: err}
	}
}
