package models

import "errors"

// Core error taxonomy. Services wrap these with context via fmt.Errorf and
// handlers match them with errors.Is to pick a response status.
var (
	// ErrNoValidScores means no submitted score fell inside the valid range;
	// analysis aborts without side effects.
	ErrNoValidScores = errors.New("no valid scores in range")

	// ErrFutureCycleLocked rejects running a draw for a cycle whose month is
	// still in the future relative to the server clock.
	ErrFutureCycleLocked = errors.New("draw cycle is in the future")

	// ErrAlreadyFinalized rejects re-finalizing a completed draw; the admin
	// must reset it first.
	ErrAlreadyFinalized = errors.New("draw already finalized")

	// ErrUnverifiedWinnersRemain blocks publishing while any winner of the
	// draw is not verified.
	ErrUnverifiedWinnersRemain = errors.New("unverified winners remain")

	// ErrMissingReference rejects a manual settlement with an empty or
	// whitespace payment reference.
	ErrMissingReference = errors.New("payment reference is required")

	// ErrExternalPaymentFailure is returned when the payment provider
	// rejects or fails a session request.
	ErrExternalPaymentFailure = errors.New("external payment failure")

	// ErrExternalTimeout surfaces a collaborator timeout as a normal failure.
	ErrExternalTimeout = errors.New("external call timed out")

	// ErrPersistenceConflict signals a concurrent write detected by a
	// conditional update.
	ErrPersistenceConflict = errors.New("persistence conflict")
)
