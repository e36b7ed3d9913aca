package session

import (
	"context"
	"time"
)

// Store persists session payloads under opaque handles and expires them
// natively. Get on an expired handle must behave exactly like Get on a handle
// that was never written.
type Store interface {
	// Put writes the payload with a fresh ttl.
	Put(ctx context.Context, handle string, s *Session, ttl time.Duration) error

	// Get returns the payload with ExpiresAt filled in, or ErrSessionNotFound.
	Get(ctx context.Context, handle string) (*Session, error)

	// Touch resets the ttl of a live handle without changing the payload.
	// Returns ErrSessionNotFound when the handle is not live.
	Touch(ctx context.Context, handle string, ttl time.Duration) error

	// Replace overwrites the payload of a live handle keeping its current ttl.
	// Returns ErrSessionNotFound when the handle is not live.
	Replace(ctx context.Context, handle string, s *Session) error

	// Delete removes the handle. Deleting a missing handle is not an error.
	Delete(ctx context.Context, handle string) error
}
