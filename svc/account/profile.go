package account

import (
	"context"
	"errors"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
)

// Profile loads the identity behind a live session.
func (s *Service) Profile(ctx context.Context, sess *session.Session) (*identity.Identity, error) {
	if sess == nil || !sess.IsLive() || !sess.HasIdentity() {
		return nil, ErrUnauthorized
	}
	id, err := s.deps.Identities.GetByEmail(ctx, sess.Email)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, classify(err)
	}
	return id, nil
}

// UpdateProfile applies update to the session's identity and refreshes the
// session snapshot without touching its expiry.
func (s *Service) UpdateProfile(ctx context.Context, sess *session.Session, update identity.ProfileUpdate) (*identity.Identity, error) {
	id, err := s.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}

	updated, err := s.deps.Identities.UpdateProfile(ctx, id.ID, update)
	if err != nil {
		return nil, classify(err)
	}

	_, err = s.deps.Sessions.UpdateSnapshot(ctx, sess.Handle, snapshotOf(updated))
	if errors.Is(err, session.ErrUnauthorized) {
		s.log().DebugContext(ctx, "session expired before snapshot refresh", logger.UserID(updated.ID))
		err = nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return updated, nil
}
