package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/config"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/svc/account"
)

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("CONFIRM_TOKEN_MAX_AGE", "2h")
	t.Setenv("RESET_TOKEN_MAX_AGE", "30m")
	config.Reset()
	t.Cleanup(config.Reset)

	var cfg account.Config
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 2*time.Hour, cfg.ConfirmMaxAge)
	assert.Equal(t, 30*time.Minute, cfg.ResetMaxAge)
	assert.Equal(t, account.DefaultConfig().RecentWindow, cfg.RecentWindow)

	f := newFixture(t, withServiceOptions(account.WithConfig(cfg)))
	ctx := context.Background()
	u := f.seed(t, "alice@x.com", "password123", identity.RoleCustomer, true)

	tok, err := f.svc.IssueResetToken(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Advance(31 * time.Minute)
	err = f.svc.ResetPassword(ctx, tok, newPassword)
	assert.ErrorIs(t, err, account.ErrExpiredToken)
}
