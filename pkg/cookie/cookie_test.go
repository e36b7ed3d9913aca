package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	w := httptest.NewRecorder()
	m.Set(w, "session_id", "abc", cookie.WithMaxAge(60))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "session_id", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, 60, c.MaxAge)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	got, err := m.Get(r, "session_id")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestManager_GetMissing(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Get(r, "nope")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	r.AddCookie(&http.Cookie{Name: "empty", Value: ""})
	_, err = m.Get(r, "empty")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))
	w := httptest.NewRecorder()
	m.Delete(w, "session_id")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Secure)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m := cookie.NewFromConfig(cookie.Config{
		Path:     "/app",
		Domain:   "example.com",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w := httptest.NewRecorder()
	m.Set(w, "k", "v")

	c := w.Result().Cookies()[0]
	assert.Equal(t, "/app", c.Path)
	assert.Equal(t, "example.com", c.Domain)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}
