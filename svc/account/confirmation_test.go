package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/token"
	"github.com/dmitrymomot/authflow/svc/account"
)

func register(t *testing.T, f *fixture, mail string) *identity.Identity {
	t.Helper()
	id, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:     mail,
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return id
}

func TestRegisterAndConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagConfirmation)).Return(nil).Once()
	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagWelcome)).Return(nil).Once()

	id := register(t, f, "Alice@X.com")
	assert.Equal(t, "alice@x.com", id.Email)
	assert.False(t, id.Active)

	_, err := f.svc.Login(ctx, account.LoginInput{Email: "alice@x.com", Password: "password123"})
	assert.ErrorIs(t, err, account.ErrNotConfirmed)

	tok := tokenFrom(t, f.mailer.last(t, email.TagConfirmation))

	res, err := f.svc.ConfirmEmail(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", res.Email)
	assert.False(t, res.AlreadyConfirmed)
	assert.Equal(t, "alice@x.com", f.mailer.last(t, email.TagWelcome).SendTo)

	// A second redemption is an idempotent no-op: no error, no second welcome.
	res, err = f.svc.ConfirmEmail(ctx, tok)
	require.NoError(t, err)
	assert.True(t, res.AlreadyConfirmed)

	_, err = f.svc.Login(ctx, account.LoginInput{Email: "alice@x.com", Password: "password123"})
	require.NoError(t, err)

	f.mailer.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagConfirmation)).Return(nil).Once()

	register(t, f, "alice@x.com")
	_, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:     "ALICE@x.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Again",
	})
	assert.ErrorIs(t, err, account.ErrEmailTaken)
	f.mailer.AssertExpectations(t)
}

func TestRegister_ValidationPassesThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:     "alice@x.com",
		Password:  "short",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	assert.ErrorIs(t, err, identity.ErrWeakPassword)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestRegister_DeliveryFailureKeepsAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagConfirmation)).Return(errors.New("smtp down")).Once()

	id, err := f.svc.Register(ctx, account.RegisterInput{
		Email:     "alice@x.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	assert.ErrorIs(t, err, account.ErrDeliveryFailed)
	require.NotNil(t, id)

	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagConfirmation)).Return(nil).Once()
	require.NoError(t, f.svc.ResendConfirmation(ctx, "alice@x.com", "/checkout"))
	assert.Contains(t, f.mailer.last(t, email.TagConfirmation).BodyText, "from=%2Fcheckout")
}

func TestResendConfirmation_AlreadyActive(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, "bob@x.com", "password123", identity.RoleCustomer, true)

	err := f.svc.ResendConfirmation(context.Background(), "bob@x.com", "")
	assert.ErrorIs(t, err, account.ErrAlreadyConfirmed)

	err = f.svc.ResendConfirmation(context.Background(), "nobody@x.com", "")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestRedeemConfirmationToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	tok, err := f.svc.IssueConfirmationToken("Alice@X.com")
	require.NoError(t, err)

	got, err := f.svc.RedeemConfirmationToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got)

	t.Run("tampered", func(t *testing.T) {
		_, err := f.svc.RedeemConfirmationToken(tok + "x")
		assert.ErrorIs(t, err, account.ErrInvalidToken)
	})

	t.Run("other purpose", func(t *testing.T) {
		reset, err := f.tokens.Issue(token.PurposePasswordReset, "alice@x.com")
		require.NoError(t, err)
		_, err = f.svc.RedeemConfirmationToken(reset)
		assert.ErrorIs(t, err, account.ErrInvalidToken)
	})
}

func TestRedeemConfirmationToken_Expired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tok, err := f.svc.IssueConfirmationToken("alice@x.com")
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour + time.Second)

	_, err = f.svc.RedeemConfirmationToken(tok)
	assert.ErrorIs(t, err, account.ErrExpiredToken)
	assert.ErrorIs(t, err, token.ErrExpiredToken)
}

func TestConfirmEmail_UnknownAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tok, err := f.svc.IssueConfirmationToken("ghost@x.com")
	require.NoError(t, err)

	_, err = f.svc.ConfirmEmail(context.Background(), tok)
	assert.ErrorIs(t, err, account.ErrInvalidToken)
}

func TestConfirmEmail_WelcomeFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, "carol@x.com", "password123", identity.RoleCustomer, false)
	f.mailer.On("SendEmail", mock.Anything, tagged(email.TagWelcome)).Return(errors.New("smtp down")).Once()

	tok, err := f.svc.IssueConfirmationToken("carol@x.com")
	require.NoError(t, err)

	res, err := f.svc.ConfirmEmail(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)

	id, err := f.identities.GetByEmail(context.Background(), "carol@x.com")
	require.NoError(t, err)
	assert.True(t, id.Active)
}
