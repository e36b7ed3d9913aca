package account

import (
	"context"
	"errors"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/token"
)

// RegisterInput is a local sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	// RedirectTo is carried through the confirmation link.
	RedirectTo string
}

// Register creates an inactive customer and mails a confirmation link.
// The account exists even when delivery fails; ResendConfirmation retries it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*identity.Identity, error) {
	id, err := s.deps.Identities.Register(ctx, identity.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return nil, classify(err)
	}

	if err := s.sendConfirmation(ctx, id, in.RedirectTo); err != nil {
		return id, err
	}
	return id, nil
}

// ResendConfirmation mails a fresh confirmation link to an inactive account.
// Active accounts are left alone and report ErrAlreadyConfirmed.
func (s *Service) ResendConfirmation(ctx context.Context, email, redirectTo string) error {
	id, err := s.deps.Identities.GetByEmail(ctx, email)
	if err != nil {
		return classify(err)
	}
	if id.Active {
		return ErrAlreadyConfirmed
	}
	return s.sendConfirmation(ctx, id, redirectTo)
}

// IssueConfirmationToken signs email for the confirmation purpose.
func (s *Service) IssueConfirmationToken(email string) (string, error) {
	return s.deps.Tokens.Issue(token.PurposeEmailConfirm, identity.NormalizeEmail(email))
}

// RedeemConfirmationToken verifies a confirmation token and returns its email.
// It is stateless: redeeming the same token twice succeeds both times.
func (s *Service) RedeemConfirmationToken(tok string) (string, error) {
	email, err := s.deps.Tokens.Verify(token.PurposeEmailConfirm, tok, s.cfg.ConfirmMaxAge)
	if err != nil {
		return "", classify(err)
	}
	return email, nil
}

// ConfirmResult is the outcome of an email confirmation.
type ConfirmResult struct {
	Email            string
	AlreadyConfirmed bool
}

// ConfirmEmail redeems tok and activates the account. Repeating it is a no-op
// reported through AlreadyConfirmed; the welcome email goes out only on the
// first activation.
func (s *Service) ConfirmEmail(ctx context.Context, tok string) (*ConfirmResult, error) {
	email, err := s.RedeemConfirmationToken(tok)
	if err != nil {
		return nil, err
	}

	id, changed, err := s.deps.Identities.Activate(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, classify(err)
	}
	if !changed {
		return &ConfirmResult{Email: id.Email, AlreadyConfirmed: true}, nil
	}

	s.log().InfoContext(ctx, "email confirmed", logger.UserID(id.ID))

	msg, err := s.deps.Messages.Welcome(ctx, id.Email, id.FirstName)
	if err == nil {
		err = s.deps.Mailer.SendEmail(ctx, msg)
	}
	if err != nil {
		s.log().ErrorContext(ctx, "failed to send welcome email", logger.UserID(id.ID), logger.Error(err))
	}
	return &ConfirmResult{Email: id.Email}, nil
}

func (s *Service) sendConfirmation(ctx context.Context, id *identity.Identity, redirectTo string) error {
	tok, err := s.IssueConfirmationToken(id.Email)
	if err != nil {
		return err
	}
	msg, err := s.deps.Messages.Confirmation(ctx, id.Email, id.FirstName, tok, redirectTo, s.cfg.ConfirmMaxAge)
	if err != nil {
		return err
	}
	if err := s.deps.Mailer.SendEmail(ctx, msg); err != nil {
		s.log().ErrorContext(ctx, "failed to send confirmation email", logger.UserID(id.ID), logger.Error(err))
		return errors.Join(ErrDeliveryFailed, err)
	}
	return nil
}
