package identity

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists identities. Create must enforce email uniqueness and
// return ErrConflict when the email is taken.
type Storage interface {
	Create(ctx context.Context, id *Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// Activate sets active=true and reports whether this call changed it.
	Activate(ctx context.Context, id uuid.UUID) (bool, error)

	SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Identity, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
}
