package repositories

import "errors"

// Sentinel errors surfaced to controllers, which map them to HTTP statuses.
var (
	// ErrInvalidTransition means the document exists but its current status
	// does not allow the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrQuoteNotPending means the quote was already accepted or rejected.
	ErrQuoteNotPending = errors.New("quote is no longer pending")

	// ErrQuoteExpired means the quote's validity window has passed.
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrInviteNotPending means the invite was already accepted, revoked or expired.
	ErrInviteNotPending = errors.New("invite is no longer pending")

	// ErrInviteExpired means the invite's acceptance window has passed.
	ErrInviteExpired = errors.New("invite has expired")

	// ErrEmailMismatch means the email supplied at acceptance does not match the invite.
	ErrEmailMismatch = errors.New("email does not match invite")
)
