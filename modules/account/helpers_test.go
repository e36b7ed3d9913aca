package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/handler"
	accountmod "github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/activity"
	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/token"
	"github.com/dmitrymomot/authflow/svc/account"
)

type outbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (o *outbox) SendEmail(_ context.Context, p email.SendEmailParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, p)
	return nil
}

var linkToken = regexp.MustCompile(`/(?:confirm-email|password-reset)/([^/\s]+)/`)

// token returns the token from the last message tagged tag.
func (o *outbox) token(t *testing.T, tag string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].Tag != tag {
			continue
		}
		m := linkToken.FindStringSubmatch(o.sent[i].BodyText)
		require.Len(t, m, 2)
		tok, err := url.PathUnescape(m[1])
		require.NoError(t, err)
		return tok
	}
	t.Fatalf("no %q email sent", tag)
	return ""
}

type stubVerifier struct{ verified identity.Verified }

func (s stubVerifier) Verify(context.Context, string) (identity.Verified, error) {
	return s.verified, nil
}

type env struct {
	h        http.Handler
	clock    *clock.Fake
	mail     *outbox
	storage  *identity.MemoryStorage
	sessions *session.Manager
}

func newEnv(t *testing.T, opts ...account.Option) *env {
	t.Helper()
	return newEnvWith(t, opts, nil)
}

func newEnvWith(t *testing.T, opts []account.Option, modOpts []accountmod.Option) *env {
	t.Helper()

	fc := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	sessStore := session.NewMemoryStore(0, session.WithMemoryClock(fc))
	t.Cleanup(func() { _ = sessStore.Close() })

	storage := identity.NewMemoryStorage()
	sessions := session.New(sessStore, session.WithClock(fc))
	codec, err := token.NewCodec("test-secret", token.WithClock(fc))
	require.NoError(t, err)
	composer, err := email.NewComposer(email.Config{FrontendBaseURL: "https://app.test", AppName: "Authflow"})
	require.NoError(t, err)
	mail := &outbox{}

	svc, err := account.New(account.Deps{
		Identities: identity.NewService(storage, identity.WithClock(fc), identity.WithBcryptCost(bcrypt.MinCost)),
		Sessions:   sessions,
		Tokens:     codec,
		Ledger:     ledger.New(ledger.NewMemoryStore(), ledger.WithClock(fc)),
		Activity:   activity.New(activity.NewMemoryStore(), activity.WithClock(fc)),
		Mailer:     mail,
		Messages:   composer,
	}, opts...)
	require.NoError(t, err)

	return &env{
		h:        accountmod.New(svc, sessions, cookie.New(), modOpts...).Handle(),
		clock:    fc,
		mail:     mail,
		storage:  storage,
		sessions: sessions,
	}
}

func (e *env) seed(t *testing.T, mail, password string, role identity.Role, active bool) *identity.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id := &identity.Identity{
		ID:           uuid.New(),
		Email:        mail,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    e.clock.Now(),
		UpdatedAt:    e.clock.Now(),
	}
	require.NoError(t, e.storage.Create(context.Background(), id))
	return id
}

type request struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	header  http.Header
}

func (e *env) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.header {
		r.Header[k] = v
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	require.NotNil(t, out.Error)
	return out.Error.Code
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
