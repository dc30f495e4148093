// Package domain defines the shared data model and domain error kinds.
package domain

import "errors"

// Domain error kinds. Handlers match these with errors.Is and convert them to
// user-visible replies; none of them terminates the process.
var (
	// ErrNotFound signals an unknown alias, user, order, or ticket.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds signals a debit that would drive a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransition signals an operation on an order or ticket already
	// in a terminal state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidDuration signals a ban duration outside -1 or 1..1200 days.
	ErrInvalidDuration = errors.New("invalid ban duration")
	// ErrInvalidFormat signals an unparsable numeric argument.
	ErrInvalidFormat = errors.New("invalid argument format")
	// ErrPermissionDenied signals a non-operator invoking an operator command.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDuplicateToken signals a mirror token already registered.
	ErrDuplicateToken = errors.New("token already registered")
)
