// Package account is the boundary of the identity, session and activity core.
//
// Service composes the building blocks under pkg/ into the operations the
// HTTP modules call: local and federated authentication, tiered sessions,
// signed confirmation and single-use reset tokens, and visitor activity.
//
// Errors are reported with a small taxonomy so callers can branch with
// errors.Is without knowing which store produced them:
//
//	ErrUnauthorized, ErrForbidden         session missing or wrong tier
//	ErrInvalidToken, ErrExpiredToken      bad or stale signed token
//	ErrAlreadyConsumed                    reset token reused
//	ErrTransient                          store unreachable, safe to retry
//	ErrInvalidCredentials, ErrNotConfirmed login refused
//
// The original cause stays reachable through errors.Is as well.
package account
