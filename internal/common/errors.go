package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")

	// Messaging errors
	ErrUnknownRecipient    = errors.New("recipient not found")
	ErrRecipientNotAllowed = errors.New("not allowed to message this recipient")
	ErrRoleNotPermitted    = errors.New("role may not start conversations")
	ErrNotAParticipant     = errors.New("not a participant of this thread")
	ErrAccessDenied        = errors.New("access denied")

	// Conflict: a concurrent create won the race; safe to retry
	ErrConflict = errors.New("conflicting concurrent update")

	// Transient storage failure; retryable by the caller
	ErrStorageUnavailable = errors.New("storage unavailable")
)
