package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------
//
// Four families cover every failure the decision core can produce:
//
//   - ErrValidation:      malformed or missing required input; the caller can
//     correct and resubmit, never auto-retried.
//   - ErrPolicyViolation: well-formed input that breaks a business rule; the
//     violated rule is named in the wrapped message.
//   - ErrStateConflict:   a transition that is invalid for the entity's
//     current status, including lost optimistic-lock races.
//   - ErrComputation:     an internal invariant failed; fatal, never
//     partially applied.

var (
	ErrValidation      = errors.New("validation error")
	ErrPolicyViolation = errors.New("policy violation")
	ErrStateConflict   = errors.New("state conflict")
	ErrComputation     = errors.New("computation error")
	ErrNotFound        = errors.New("not found")
)

// ErrInvalidStatusTransition marks a lifecycle transition that is not allowed
// from the current status.
var ErrInvalidStatusTransition = fmt.Errorf("%w: invalid status transition", ErrStateConflict)
