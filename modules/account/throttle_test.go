package account_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountmod "github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
)

func TestLoginIsThrottledPerClient(t *testing.T) {
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	e := newEnvWith(t, nil, []accountmod.Option{accountmod.WithRateLimiter(limiter)})
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	bad := request{
		method: http.MethodPost,
		path:   "/login",
		body:   map[string]string{"email": "jane@example.com", "password": "wrong-password"},
		header: http.Header{"X-Forwarded-For": {"198.51.100.4"}},
	}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, bad).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, bad).Code)

	rec := e.do(t, bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too_many_requests", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Another client and other routes keep their own budget.
	bad.header = http.Header{"X-Forwarded-For": {"198.51.100.5"}}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, bad).Code)

	rec = e.do(t, request{
		method: http.MethodPost,
		path:   "/password-reset/request",
		body:   map[string]string{"email": "jane@example.com"},
		header: http.Header{"X-Forwarded-For": {"198.51.100.4"}},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
