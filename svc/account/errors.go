package account

import (
	"errors"

	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/pg"
	"github.com/dmitrymomot/authflow/pkg/redis"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/token"
)

var (
	ErrUnauthorized       = errors.New("account: unauthorized")
	ErrForbidden          = errors.New("account: forbidden")
	ErrInvalidToken       = errors.New("account: invalid token")
	ErrExpiredToken       = errors.New("account: expired token")
	ErrAlreadyConsumed    = errors.New("account: token already used")
	ErrTransient          = errors.New("account: temporary failure, retry later")
	ErrInvalidCredentials = errors.New("account: invalid email or password")
	ErrNotConfirmed       = errors.New("account: email is not confirmed")
	ErrEmailTaken         = errors.New("account: an account with this email already exists")
	ErrAccountNotFound    = errors.New("account: account does not exist")
	ErrProviderDisabled   = errors.New("account: login provider is not configured")
	ErrInvalidVisitorID   = errors.New("account: invalid visitor id")
	ErrAlreadyConfirmed   = errors.New("account: email is already confirmed")
	ErrDeliveryFailed     = errors.New("account: failed to deliver email")
)

// classify attaches the account-level kind to err while keeping the cause
// reachable through errors.Is. Validation errors from the identity package
// pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var kind error
	switch {
	case errors.Is(err, session.ErrStoreFailure),
		pg.IsTransientError(err),
		redis.IsTransientError(err):
		kind = ErrTransient
	case errors.Is(err, session.ErrUnauthorized),
		errors.Is(err, session.ErrSessionNotFound):
		kind = ErrUnauthorized
	case errors.Is(err, session.ErrForbidden):
		kind = ErrForbidden
	case errors.Is(err, token.ErrExpiredToken):
		kind = ErrExpiredToken
	case errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrEmptyToken):
		kind = ErrInvalidToken
	case errors.Is(err, ledger.ErrAlreadyConsumed):
		kind = ErrAlreadyConsumed
	case errors.Is(err, identity.ErrInvalidCredentials):
		kind = ErrInvalidCredentials
	case errors.Is(err, identity.ErrConflict):
		kind = ErrEmailTaken
	case errors.Is(err, identity.ErrNotFound):
		kind = ErrAccountNotFound
	default:
		return err
	}

	if errors.Is(err, kind) {
		return err
	}
	return errors.Join(kind, err)
}
