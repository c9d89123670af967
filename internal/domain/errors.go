package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrRateLimitExceeded     = errors.New("rate limit exceeded")
	ErrMalformedEvent        = errors.New("malformed event")
	ErrUnsupportedEventType  = errors.New("unsupported event type")
	ErrTerminalStatus        = errors.New("complaint is in a terminal status")
	ErrLockNotAcquired       = errors.New("complaint lock not acquired")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
