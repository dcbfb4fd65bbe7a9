package domain

import "errors"

// Typed failures returned by core services. Handlers map these to transport
// codes with errors.Is; services never panic across their boundary.
var (
	// ErrNotFound: referenced sponsor, deliverable or proof does not exist.
	ErrNotFound = errors.New("Resource not found")
	// ErrInvalidState: the operation is not legal for the record's current
	// status (e.g. deleting an in_progress deliverable) or carries an
	// unrecognized enum value.
	ErrInvalidState = errors.New("Invalid state for this operation")
	// ErrPermissionDenied: the acting role may not perform this mutation.
	ErrPermissionDenied = errors.New("User is Forbidden from performing this action")
	// ErrTransactionConflict: the store reported a conflicting concurrent
	// write and the bounded retry was exhausted.
	ErrTransactionConflict = errors.New("Conflicting concurrent update, please retry")
)
