package account_test

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/pkg/activity"
	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/token"
	"github.com/dmitrymomot/authflow/svc/account"
)

// MockMailer is a testify mock for email.EmailSender that keeps every
// message it accepted.
type MockMailer struct {
	mock.Mock

	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (m *MockMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	if err := args.Error(0); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, params)
	m.mu.Unlock()
	return nil
}

func (m *MockMailer) last(t *testing.T, tag string) email.SendEmailParams {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Tag == tag {
			return m.sent[i]
		}
	}
	t.Fatalf("no %q email sent", tag)
	return email.SendEmailParams{}
}

func tagged(tag string) any {
	return mock.MatchedBy(func(p email.SendEmailParams) bool { return p.Tag == tag })
}

var linkToken = regexp.MustCompile(`/(?:confirm-email|password-reset)/([^/\s]+)/`)

// tokenFrom extracts the token embedded in a message link.
func tokenFrom(t *testing.T, msg email.SendEmailParams) string {
	t.Helper()
	m := linkToken.FindStringSubmatch(msg.BodyText)
	require.Len(t, m, 2, "no link in %q", msg.BodyText)
	tok, err := url.PathUnescape(m[1])
	require.NoError(t, err)
	return tok
}

type stubVerifier struct {
	verified identity.Verified
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (identity.Verified, error) {
	return s.verified, s.err
}

var errStoreDown = errors.New("store down")

type downSessionStore struct{ session.Store }

func (downSessionStore) Get(context.Context, string) (*session.Session, error) {
	return nil, errStoreDown
}

type fixture struct {
	svc        *account.Service
	clock      *clock.Fake
	mailer     *MockMailer
	storage    *identity.MemoryStorage
	identities *identity.Service
	sessions   *session.Manager
	tokens     *token.Codec
	activity   *activity.MemoryStore
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	sessionStore session.Store
	wrapStorage  func(*identity.MemoryStorage) identity.Storage
	opts         []account.Option
}

func withSessionStore(s session.Store) fixtureOption {
	return func(c *fixtureConfig) { c.sessionStore = s }
}

func withIdentityStorage(wrap func(*identity.MemoryStorage) identity.Storage) fixtureOption {
	return func(c *fixtureConfig) { c.wrapStorage = wrap }
}

func withServiceOptions(opts ...account.Option) fixtureOption {
	return func(c *fixtureConfig) { c.opts = append(c.opts, opts...) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	fc := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	sessStore := session.NewMemoryStore(0, session.WithMemoryClock(fc))
	t.Cleanup(func() { _ = sessStore.Close() })

	cfg := fixtureConfig{sessionStore: sessStore}
	for _, opt := range opts {
		opt(&cfg)
	}

	storage := identity.NewMemoryStorage()
	var backend identity.Storage = storage
	if cfg.wrapStorage != nil {
		backend = cfg.wrapStorage(storage)
	}
	identities := identity.NewService(backend,
		identity.WithClock(fc),
		identity.WithBcryptCost(bcrypt.MinCost),
	)
	sessions := session.New(cfg.sessionStore, session.WithClock(fc))
	codec, err := token.NewCodec("test-secret", token.WithClock(fc))
	require.NoError(t, err)
	activityStore := activity.NewMemoryStore()
	composer, err := email.NewComposer(email.Config{FrontendBaseURL: "https://app.test", AppName: "Authflow"})
	require.NoError(t, err)
	mailer := &MockMailer{}

	svc, err := account.New(account.Deps{
		Identities: identities,
		Sessions:   sessions,
		Tokens:     codec,
		Ledger:     ledger.New(ledger.NewMemoryStore(), ledger.WithClock(fc)),
		Activity:   activity.New(activityStore, activity.WithClock(fc)),
		Mailer:     mailer,
		Messages:   composer,
	}, cfg.opts...)
	require.NoError(t, err)

	return &fixture{
		svc:        svc,
		clock:      fc,
		mailer:     mailer,
		storage:    storage,
		identities: identities,
		sessions:   sessions,
		tokens:     codec,
		activity:   activityStore,
	}
}

// seed stores an identity directly, bypassing registration.
func (f *fixture) seed(t *testing.T, mail, password string, role identity.Role, active bool) *identity.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := f.clock.Now()
	id := &identity.Identity{
		ID:           uuid.New(),
		Email:        mail,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.storage.Create(context.Background(), id))
	return id
}
