package service

import "errors"

// Error roots. Specific errors wrap exactly one of these so handlers
// can map any service error to a response with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrNotAllowed = errors.New("not allowed")
)

var (
	ErrTripNotFound       = wrap("trip not found", ErrNotFound)
	ErrMemberNotFound     = wrap("member not found", ErrNotFound)
	ErrUserNotFound       = wrap("user not found", ErrNotFound)
	ErrExpenseNotFound    = wrap("expense not found", ErrNotFound)
	ErrInvitationNotFound = wrap("invitation not found", ErrNotFound)

	ErrNotTripMember = wrap("user is not an active member of this trip", ErrNotAllowed)
	ErrNotTripAdmin  = wrap("operation requires trip admin role", ErrNotAllowed)

	ErrAlreadyMember      = wrap("user is already an active member of this trip", ErrConflict)
	ErrInvitationPending  = wrap("user already has a pending invitation to this trip", ErrConflict)
	ErrInvitationResolved = wrap("invitation has already been resolved", ErrConflict)
	ErrLastAdmin          = wrap("trip must keep at least one active admin", ErrConflict)
	ErrEmailTaken         = wrap("email is already registered", ErrConflict)

	// ErrInvitationExpired wraps ErrConflict: the caller raced the
	// expiry deadline, not a validation mistake on their side.
	ErrInvitationExpired = wrap("invitation has expired", ErrConflict)
)

func wrap(msg string, root error) error {
	return &rootedError{msg: msg, root: root}
}

type rootedError struct {
	msg  string
	root error
}

func (e *rootedError) Error() string { return e.msg }
func (e *rootedError) Unwrap() error { return e.root }
