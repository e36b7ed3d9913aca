package session

import "errors"

var (
	// ErrSessionNotFound is returned by stores for missing, expired or deleted handles.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrUnauthorized means the caller presented no live session.
	ErrUnauthorized = errors.New("session.unauthorized")

	// ErrForbidden means the session is live but carries the wrong role.
	ErrForbidden = errors.New("session.forbidden")

	// ErrStoreFailure wraps any store error other than a miss.
	ErrStoreFailure = errors.New("session.store_failure")

	ErrTokenGeneration = errors.New("session.token_generation_failed")
	ErrInvalidSession  = errors.New("session.invalid")
	ErrInvalidRole     = errors.New("session.invalid_role")
	ErrInvalidTTL      = errors.New("session.invalid_ttl")
)
