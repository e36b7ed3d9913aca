package account

import (
	"context"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
)

// AuthenticateLocal checks an email and password pair.
func (s *Service) AuthenticateLocal(ctx context.Context, email, password string) (*identity.Identity, error) {
	id, err := s.deps.Identities.AuthenticateLocal(ctx, email, password)
	if err != nil {
		return nil, classify(err)
	}
	return id, nil
}

// AuthenticateFederated resolves a provider-verified identity, provisioning
// a customer account on first sight. Provisioning races are settled inside
// the identity service.
func (s *Service) AuthenticateFederated(ctx context.Context, v identity.Verified) (*identity.Identity, error) {
	id, created, err := s.deps.Identities.FindOrCreate(ctx, v)
	if err != nil {
		return nil, classify(err)
	}
	if created {
		s.log().InfoContext(ctx, "federated account created", logger.UserID(id.ID))
	}
	return id, nil
}

// StartSession issues a handle for id at tier. The tier must match the
// identity's role.
func (s *Service) StartSession(ctx context.Context, id *identity.Identity, tier session.Role) (*session.Session, error) {
	if tierOf(id) != tier {
		return nil, ErrForbidden
	}
	sess, err := s.deps.Sessions.CreateSession(ctx, id.Email, tier, snapshotOf(id))
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

// EndSession revokes handle. Unknown handles are not an error.
func (s *Service) EndSession(ctx context.Context, handle string) error {
	return classify(s.deps.Sessions.Delete(ctx, handle))
}

// RequireTier resolves handle and demands tier.
func (s *Service) RequireTier(ctx context.Context, handle string, tier session.Role) (*session.Session, error) {
	sess, err := s.deps.Sessions.RequireRole(ctx, handle, tier)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

// ResolveSession returns the session behind handle or an anonymous fallback.
func (s *Service) ResolveSession(ctx context.Context, handle string) (*session.Session, error) {
	sess, err := s.deps.Sessions.Resolve(ctx, handle)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

// RefreshSession pushes the expiry of a tier session a full TTL forward.
func (s *Service) RefreshSession(ctx context.Context, handle string, tier session.Role) (*session.Session, error) {
	if _, err := s.RequireTier(ctx, handle, tier); err != nil {
		return nil, err
	}
	sess, err := s.deps.Sessions.Extend(ctx, handle)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

func tierOf(id *identity.Identity) session.Role {
	return session.Role(id.Role)
}

func snapshotOf(id *identity.Identity) session.Profile {
	return session.Profile{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		AvatarURL: id.AvatarURL,
	}
}
