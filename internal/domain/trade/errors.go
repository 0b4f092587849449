// Package trade holds the error taxonomy shared by the negotiation engines.
package trade

import "errors"

var (
	// ErrNotFound indicates the negotiation or item does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor is not authorized for this action or role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState indicates the action is not legal from the current status.
	ErrInvalidState = errors.New("invalid state for this action")
	// ErrInvalidOperand indicates bad input: ineligible item, non-positive
	// price, missing counter item.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrConflict indicates a duplicate pending request or a
	// double-completion attempt.
	ErrConflict = errors.New("conflict")
	// ErrDependencyFailure indicates an unreachable collaborator. Payment
	// failures abort the transition; notifier failures are swallowed.
	ErrDependencyFailure = errors.New("dependency failure")
	// ErrStale indicates an optimistic-concurrency write lost the race and
	// should be retried against fresh state.
	ErrStale = errors.New("stale negotiation state")
)
