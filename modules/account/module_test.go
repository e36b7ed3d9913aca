package account_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountmod "github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/svc/account"
)

const password = "Str0ng!Pass"

func TestRegisterConfirmAndLogin(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/", body: map[string]string{
		"email":      "jane@example.com",
		"password":   password,
		"first_name": "Jane",
		"last_name":  "Doe",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[accountmod.RegisterResponse](t, rec)
	assert.True(t, reg.ConfirmationSent)
	assert.False(t, reg.User.Active)

	login := request{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": "jane@example.com", "password": password,
	}}
	rec = e.do(t, login)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "email_not_confirmed", errorCode(t, rec))

	tok := e.mail.token(t, email.TagConfirmation)
	rec = e.do(t, request{method: http.MethodGet, path: "/confirm-email/" + url.PathEscape(tok)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decode[accountmod.ConfirmEmailResponse](t, rec)
	assert.Equal(t, "jane@example.com", confirmed.Email)
	assert.False(t, confirmed.AlreadyConfirmed)

	rec = e.do(t, request{method: http.MethodGet, path: "/confirm-email/" + url.PathEscape(tok)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[accountmod.ConfirmEmailResponse](t, rec).AlreadyConfirmed)

	rec = e.do(t, login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[accountmod.LoginResponse](t, rec)
	assert.Equal(t, "/profile", res.RedirectTo)
	assert.NotEmpty(t, res.SessionToken)

	sessCookie := cookieNamed(rec, "session_id")
	require.NotNil(t, sessCookie)
	assert.Equal(t, res.SessionToken, sessCookie.Value)
	visitor := cookieNamed(rec, "unique_id")
	require.NotNil(t, visitor)
	assert.Equal(t, reg.User.ID.String(), visitor.Value)

	rec = e.do(t, request{method: http.MethodGet, path: "/me", cookies: []*http.Cookie{sessCookie}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Jane", decode[accountmod.User](t, rec).FirstName)
}

func TestRegister_Errors(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "taken@example.com", password, identity.RoleCustomer, true)

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"duplicate email", map[string]string{"email": "taken@example.com", "password": password, "first_name": "A", "last_name": "B"}, http.StatusConflict},
		{"invalid email", map[string]string{"email": "nope", "password": password, "first_name": "A", "last_name": "B"}, http.StatusUnprocessableEntity},
		{"short password", map[string]string{"email": "a@example.com", "password": "short", "first_name": "A", "last_name": "B"}, http.StatusUnprocessableEntity},
		{"missing name", map[string]string{"email": "a@example.com", "password": password}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, request{method: http.MethodPost, path: "/", body: tt.body})
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}

	t.Run("not json", func(t *testing.T) {
		rec := e.do(t, request{method: http.MethodPost, path: "/", header: http.Header{"Content-Type": {"text/plain"}}})
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestConfirmEmail_InvalidLink(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, request{method: http.MethodGet, path: "/confirm-email/garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_link", errorCode(t, rec))
}

func TestResendConfirmation(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "pending@example.com", password, identity.RoleCustomer, false)
	e.seed(t, "active@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodPost, path: "/confirm-email/resend", body: map[string]string{"email": "pending@example.com"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, e.mail.token(t, email.TagConfirmation))

	rec = e.do(t, request{method: http.MethodPost, path: "/confirm-email/resend", body: map[string]string{"email": "active@example.com"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_Rejections(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "admin@example.com", password, identity.RoleAdmin, true)
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodPost, path: "/login", body: map[string]string{"email": "jane@example.com", "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieNamed(rec, "session_id"))

	rec = e.do(t, request{method: http.MethodPost, path: "/login", body: map[string]string{"email": "admin@example.com", "password": password}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnonymousSessionUpgradesOnLogin(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodPost, path: "/anonymous-session"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	anon := cookieNamed(rec, "anonymous_session_id")
	require.NotNil(t, anon)
	visitor := cookieNamed(rec, "unique_id")
	require.NotNil(t, visitor)
	assert.Equal(t, visitor.Value, decode[accountmod.VisitResponse](t, rec).VisitorID)

	sess, err := e.sessions.Resolve(context.Background(), anon.Value)
	require.NoError(t, err)
	require.True(t, sess.IsLive())

	rec = e.do(t, request{
		method:  http.MethodPost,
		path:    "/login",
		body:    map[string]string{"email": "jane@example.com", "password": password},
		cookies: []*http.Cookie{anon, visitor},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cleared := cookieNamed(rec, "anonymous_session_id")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Equal(t, visitor.Value, cookieNamed(rec, "unique_id").Value)

	sess, err = e.sessions.Resolve(context.Background(), anon.Value)
	require.NoError(t, err)
	assert.False(t, sess.IsLive())
}

func TestMarkActive(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/mark-active"})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[accountmod.VisitResponse](t, rec)
	assert.NotEmpty(t, first.VisitorID)
	assert.True(t, e.clock.Now().Equal(first.LastActive), first.LastActive)

	rec = e.do(t, request{method: http.MethodPost, path: "/mark-active", cookies: []*http.Cookie{{Name: "unique_id", Value: first.VisitorID}}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.VisitorID, decode[accountmod.VisitResponse](t, rec).VisitorID)
}

func TestProfileRequiresCustomerSession(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodGet, path: "/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = e.do(t, request{method: http.MethodPost, path: "/login", body: map[string]string{"email": "jane@example.com", "password": password}})
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode[accountmod.LoginResponse](t, rec).SessionToken

	bearer := http.Header{"Authorization": {"Bearer " + tok}}
	rec = e.do(t, request{method: http.MethodPatch, path: "/me", header: bearer, body: map[string]string{"first_name": "Janet"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Janet", decode[accountmod.User](t, rec).FirstName)

	sess, err := e.sessions.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Janet", sess.Profile.FirstName)

	rec = e.do(t, request{method: http.MethodGet, path: "/me", header: bearer})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User", decode[accountmod.User](t, rec).LastName)
}

func TestLogoutAndRefresh(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodPost, path: "/login", body: map[string]string{"email": "jane@example.com", "password": password}})
	require.Equal(t, http.StatusOK, rec.Code)
	sessCookie := cookieNamed(rec, "session_id")
	require.NotNil(t, sessCookie)

	e.clock.Advance(e.sessions.Config().CustomerTTL / 2)
	rec = e.do(t, request{method: http.MethodPost, path: "/refresh-session", cookies: []*http.Cookie{sessCookie}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refreshed := decode[accountmod.SessionResponse](t, rec)
	assert.True(t, e.clock.Now().Add(e.sessions.Config().CustomerTTL).Equal(refreshed.ExpiresAt), refreshed.ExpiresAt)

	rec = e.do(t, request{method: http.MethodPost, path: "/logout", cookies: []*http.Cookie{sessCookie}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := cookieNamed(rec, "session_id")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	rec = e.do(t, request{method: http.MethodGet, path: "/me", cookies: []*http.Cookie{sessCookie}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/refresh-session", cookies: []*http.Cookie{sessCookie}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "jane@example.com", password, identity.RoleCustomer, true)

	rec := e.do(t, request{method: http.MethodPost, path: "/password-reset/request", body: map[string]string{"email": "ghost@example.com"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/password-reset/request", body: map[string]string{"email": "jane@example.com"}})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	tok := e.mail.token(t, email.TagPasswordReset)

	rec = e.do(t, request{method: http.MethodPost, path: "/password-reset/confirm", body: map[string]string{"token": tok, "password": "alllowercase"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	const newPassword = "N3w!Password"
	rec = e.do(t, request{method: http.MethodPost, path: "/password-reset/confirm", body: map[string]string{"token": tok, "password": newPassword}})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = e.do(t, request{method: http.MethodPost, path: "/password-reset/confirm", body: map[string]string{"token": tok, "password": newPassword}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_link", errorCode(t, rec))

	rec = e.do(t, request{method: http.MethodPost, path: "/login", body: map[string]string{"email": "jane@example.com", "password": newPassword}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFederatedLogin(t *testing.T) {
	t.Run("google disabled", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, request{method: http.MethodPost, path: "/google-login", body: map[string]string{"id_token": "x"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("google", func(t *testing.T) {
		e := newEnv(t, account.WithGoogleVerifier(stubVerifier{verified: identity.Verified{
			Email: "g@example.com", FirstName: "Gina", LastName: "Green",
		}}))
		state := url.QueryEscape(`{"from":"/billing"}`)
		rec := e.do(t, request{method: http.MethodPost, path: "/google-login", body: map[string]string{"id_token": "x", "state": state}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode[accountmod.LoginResponse](t, rec)
		assert.True(t, res.Created)
		assert.True(t, res.User.Active)
		assert.Equal(t, "/billing", res.RedirectTo)
		assert.NotNil(t, cookieNamed(rec, "session_id"))
	})

	t.Run("facebook", func(t *testing.T) {
		e := newEnv(t)
		e.seed(t, "fb@example.com", password, identity.RoleCustomer, false)

		rec := e.do(t, request{method: http.MethodPost, path: "/facebook-login", body: map[string]any{
			"id": "123", "email": "fb@example.com", "name": "Fay Book",
			"state": url.QueryEscape(`{"from":"//evil.example"}`),
		}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode[accountmod.LoginResponse](t, rec)
		assert.False(t, res.Created)
		assert.True(t, res.User.Active)
		assert.Equal(t, "/profile", res.RedirectTo)
	})

	t.Run("facebook without identity", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, request{method: http.MethodPost, path: "/facebook-login", body: map[string]any{"name": "Nobody"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAnonymousSessionIsNotACustomer(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/anonymous-session"})
	require.Equal(t, http.StatusCreated, rec.Code)
	anon := cookieNamed(rec, "anonymous_session_id")

	rec = e.do(t, request{method: http.MethodGet, path: "/me", header: http.Header{"Authorization": {"Bearer " + anon.Value}}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
