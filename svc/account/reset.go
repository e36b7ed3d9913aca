package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/token"
)

// IssueResetToken signs a reset token for a customer and records it in the
// ledger so it can be redeemed once.
func (s *Service) IssueResetToken(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := s.deps.Identities.GetByID(ctx, userID)
	if err != nil {
		return "", classify(err)
	}
	return s.issueResetToken(ctx, id)
}

// RequestPasswordReset mails a reset link to the customer behind email.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	id, err := s.deps.Identities.GetByEmail(ctx, email)
	if err != nil {
		return classify(err)
	}

	tok, err := s.issueResetToken(ctx, id)
	if err != nil {
		return err
	}

	msg, err := s.deps.Messages.PasswordReset(ctx, id.Email, id.FirstName, tok, s.cfg.ResetMaxAge)
	if err != nil {
		return err
	}
	if err := s.deps.Mailer.SendEmail(ctx, msg); err != nil {
		s.log().ErrorContext(ctx, "failed to send password reset email", logger.UserID(id.ID), logger.Error(err))
		return errors.Join(ErrDeliveryFailed, err)
	}
	return nil
}

// RedeemResetToken checks signature and age, then consumes the token in the
// ledger. Only one redemption of a token ever succeeds; later ones fail with
// ErrAlreadyConsumed. A non-positive maxAge disables the age check.
func (s *Service) RedeemResetToken(ctx context.Context, tok string, maxAge time.Duration) (uuid.UUID, error) {
	email, err := s.deps.Tokens.Verify(token.PurposePasswordReset, tok, maxAge)
	if err != nil {
		return uuid.Nil, classify(err)
	}

	entry, err := s.deps.Ledger.Consume(ctx, tok)
	if err != nil {
		return uuid.Nil, classify(err)
	}

	id, err := s.deps.Identities.GetByID(ctx, entry.UserID)
	if errors.Is(err, identity.ErrNotFound) {
		return uuid.Nil, ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, classify(err)
	}
	if id.Email != email {
		s.log().WarnContext(ctx, "reset token subject does not match its owner", logger.UserID(id.ID))
		return uuid.Nil, ErrInvalidToken
	}
	return id.ID, nil
}

// ResetPassword redeems tok and sets a new password. The password policy is
// checked first so a rejected password does not burn the token. Consuming the
// token and storing the new hash commit together: when the write fails the
// token stays redeemable and the caller may retry.
func (s *Service) ResetPassword(ctx context.Context, tok, newPassword string) error {
	if err := identity.ValidateStrongPassword(newPassword); err != nil {
		return err
	}

	email, err := s.deps.Tokens.Verify(token.PurposePasswordReset, tok, s.cfg.ResetMaxAge)
	if err != nil {
		return classify(err)
	}
	entry, err := s.deps.Ledger.Lookup(ctx, tok)
	if err != nil {
		return classify(err)
	}
	if entry.Consumed {
		return ErrAlreadyConsumed
	}

	id, err := s.deps.Identities.GetByID(ctx, entry.UserID)
	if errors.Is(err, identity.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return classify(err)
	}
	if id.Email != email {
		s.log().WarnContext(ctx, "reset token subject does not match its owner", logger.UserID(id.ID))
		return ErrInvalidToken
	}
	if id.Role != identity.RoleCustomer {
		return ErrForbidden
	}

	hash, err := s.deps.Identities.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.deps.Ledger.ConsumeWith(ctx, tok, func(ctx context.Context, e ledger.Entry) error {
		return s.deps.Identities.SetPasswordHash(ctx, e.UserID, hash)
	}); err != nil {
		return classify(err)
	}

	s.log().InfoContext(ctx, "password reset", logger.UserID(id.ID))
	return nil
}

func (s *Service) issueResetToken(ctx context.Context, id *identity.Identity) (string, error) {
	if id.Role != identity.RoleCustomer {
		return "", ErrForbidden
	}
	tok, err := s.deps.Tokens.Issue(token.PurposePasswordReset, id.Email)
	if err != nil {
		return "", err
	}
	if _, err := s.deps.Ledger.Record(ctx, id.ID, tok); err != nil {
		return "", classify(err)
	}
	return tok, nil
}
