package account

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
)

// LoginInput is a local customer login attempt.
type LoginInput struct {
	Email    string
	Password string

	// AnonymousHandle is the caller's anonymous session, if any. It is
	// revoked once the login succeeds.
	AnonymousHandle string
	// VisitorID is the caller's stable activity id. The identity id is used
	// when empty.
	VisitorID string
}

// LoginResult is the outcome of a successful customer login.
type LoginResult struct {
	Session    *session.Session
	Identity   *identity.Identity
	VisitorID  string
	RedirectTo string
	Created    bool
}

// Login authenticates a customer with a password and starts a customer
// session in place of any anonymous one.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	id, err := s.AuthenticateLocal(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if !id.Active {
		return nil, ErrNotConfirmed
	}
	if id.Role != identity.RoleCustomer {
		return nil, ErrForbidden
	}

	sess, err := s.deps.Sessions.Login(ctx, in.AnonymousHandle, id.Email, session.RoleCustomer, snapshotOf(id))
	if err != nil {
		return nil, classify(err)
	}

	s.log().InfoContext(ctx, "customer logged in", logger.UserID(id.ID))
	return &LoginResult{
		Session:   sess,
		Identity:  id,
		VisitorID: s.recordLoginVisit(ctx, in.VisitorID, id),
	}, nil
}

// AdminLogin authenticates an administrator and starts an admin session.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*session.Session, error) {
	id, err := s.AuthenticateLocal(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if id.Role != identity.RoleAdmin {
		s.log().WarnContext(ctx, "admin login rejected", logger.UserID(id.ID), logger.Role(id.Role))
		return nil, ErrForbidden
	}

	sess, err := s.StartSession(ctx, id, session.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log().InfoContext(ctx, "admin logged in", logger.UserID(id.ID))
	return sess, nil
}

// FederatedLoginInput carries the parts of a social login shared by every
// provider.
type FederatedLoginInput struct {
	// State is the URL-encoded JSON state round-tripped through the provider.
	// Its "from" field becomes the post-login redirect.
	State           string
	AnonymousHandle string
	VisitorID       string
}

// GoogleLogin verifies a Google ID token and logs the customer in.
func (s *Service) GoogleLogin(ctx context.Context, rawIDToken string, in FederatedLoginInput) (*LoginResult, error) {
	if s.google == nil {
		return nil, ErrProviderDisabled
	}
	verified, err := s.google.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, verified, in)
}

// FacebookLogin logs in the customer described by a Facebook profile payload.
func (s *Service) FacebookLogin(ctx context.Context, user identity.FacebookUser, in FederatedLoginInput) (*LoginResult, error) {
	verified, err := user.Verified()
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, verified, in)
}

func (s *Service) federatedLogin(ctx context.Context, v identity.Verified, in FederatedLoginInput) (*LoginResult, error) {
	id, created, err := s.deps.Identities.FindOrCreate(ctx, v)
	if err != nil {
		return nil, classify(err)
	}
	if created {
		s.log().InfoContext(ctx, "federated account created", logger.UserID(id.ID))
	}
	if id.Role != identity.RoleCustomer {
		return nil, ErrForbidden
	}

	// The provider vouched for the address, which is what confirmation proves.
	if !created && !id.Active {
		if id, _, err = s.deps.Identities.Activate(ctx, id.Email); err != nil {
			return nil, classify(err)
		}
	}

	sess, err := s.deps.Sessions.Login(ctx, in.AnonymousHandle, id.Email, session.RoleCustomer, snapshotOf(id))
	if err != nil {
		return nil, classify(err)
	}

	return &LoginResult{
		Session:    sess,
		Identity:   id,
		VisitorID:  s.recordLoginVisit(ctx, in.VisitorID, id),
		RedirectTo: RedirectFromState(in.State, s.cfg.DefaultRedirect),
		Created:    created,
	}, nil
}

// recordLoginVisit counts the login towards activity. A failure is logged
// and does not undo the login.
func (s *Service) recordLoginVisit(ctx context.Context, visitorID string, id *identity.Identity) string {
	if visitorID = strings.TrimSpace(visitorID); visitorID == "" {
		visitorID = id.ID.String()
	}
	if _, err := s.deps.Activity.Touch(ctx, visitorID, s.deps.Activity.Now()); err != nil {
		s.log().WarnContext(ctx, "failed to record login visit",
			logger.VisitorID(visitorID),
			logger.Error(err),
		)
	}
	return visitorID
}

// RedirectFromState extracts the "from" path of a URL-encoded JSON state.
// Anything but a local absolute path yields fallback.
func RedirectFromState(state, fallback string) string {
	if state == "" {
		return fallback
	}
	raw, err := url.QueryUnescape(state)
	if err != nil {
		return fallback
	}
	var v struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback
	}
	if !strings.HasPrefix(v.From, "/") || strings.HasPrefix(v.From, "//") || strings.Contains(v.From, `\`) {
		return fallback
	}
	return v.From
}
