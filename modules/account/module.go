package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/svc/account"
)

// Module serves the customer-facing account API.
type Module struct {
	svc        *account.Service
	sessions   *session.Manager
	transports map[session.Role]session.Transport
	cookies    *cookie.Manager
	limiter    ratelimiter.RateLimiter
	logger     *slog.Logger
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRateLimiter throttles credential and email-sending routes per client
// address.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(m *Module) { m.limiter = l }
}

// New creates the account module. Session handles travel over the
// transports built from the manager's config.
func New(svc *account.Service, sessions *session.Manager, cookies *cookie.Manager, opts ...Option) *Module {
	m := &Module{
		svc:        svc,
		sessions:   sessions,
		transports: session.Transports(sessions.Config(), cookies),
		cookies:    cookies,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle returns the module router, meant to be mounted under /users.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	onError := handler.NewErrorHandler(m.logger)

	r.With(m.throttle("register")).Post("/", handler.Wrap(m.register,
		handler.WithBinders[RegisterRequest](handler.BindJSON()),
		handler.WithErrorHandler[RegisterRequest](onError),
	))
	r.Get("/confirm-email/{token}", handler.Wrap(m.confirmEmail,
		handler.WithBinders[ConfirmEmailRequest](handler.BindPath(chi.URLParam)),
		handler.WithErrorHandler[ConfirmEmailRequest](onError),
	))
	r.With(m.throttle("confirm-resend")).Post("/confirm-email/resend", handler.Wrap(m.resendConfirmation,
		handler.WithBinders[ResendRequest](handler.BindJSON()),
		handler.WithErrorHandler[ResendRequest](onError),
	))

	r.With(m.throttle("login")).Post("/login", handler.Wrap(m.login,
		handler.WithBinders[LoginRequest](handler.BindJSON()),
		handler.WithErrorHandler[LoginRequest](onError),
	))
	r.With(m.throttle("login")).Post("/google-login", handler.Wrap(m.googleLogin,
		handler.WithBinders[GoogleLoginRequest](handler.BindJSON()),
		handler.WithErrorHandler[GoogleLoginRequest](onError),
	))
	r.With(m.throttle("login")).Post("/facebook-login", handler.Wrap(m.facebookLogin,
		handler.WithBinders[FacebookLoginRequest](handler.BindJSON()),
		handler.WithErrorHandler[FacebookLoginRequest](onError),
	))
	r.Post("/logout", handler.Wrap(m.logout, handler.WithErrorHandler[struct{}](onError)))
	r.Post("/refresh-session", handler.Wrap(m.refreshSession, handler.WithErrorHandler[struct{}](onError)))

	r.With(m.throttle("reset-request")).Post("/password-reset/request", handler.Wrap(m.requestPasswordReset,
		handler.WithBinders[ResetRequest](handler.BindJSON()),
		handler.WithErrorHandler[ResetRequest](onError),
	))
	r.With(m.throttle("reset-confirm")).Post("/password-reset/confirm", handler.Wrap(m.confirmPasswordReset,
		handler.WithBinders[ResetConfirmRequest](handler.BindJSON()),
		handler.WithErrorHandler[ResetConfirmRequest](onError),
	))

	r.Post("/anonymous-session", handler.Wrap(m.anonymousSession, handler.WithErrorHandler[struct{}](onError)))
	r.Post("/mark-active", handler.Wrap(m.markActive, handler.WithErrorHandler[struct{}](onError)))

	r.Group(func(r chi.Router) {
		r.Use(m.sessions.RequireRoleMiddleware(
			m.transports[session.RoleCustomer],
			session.RoleCustomer,
			web.SessionErrorHandler(m.logger),
		))
		r.Get("/me", handler.Wrap(m.me, handler.WithErrorHandler[struct{}](onError)))
		r.Patch("/me", handler.Wrap(m.updateMe,
			handler.WithBinders[UpdateProfileRequest](handler.BindJSON()),
			handler.WithErrorHandler[UpdateProfileRequest](onError),
		))
	})

	return r
}

// startSession writes the handle of sess to the transport of its role and
// drops any anonymous handle.
func (m *Module) startSession(w http.ResponseWriter, sess *session.Session) {
	if sess.Role != session.RoleAnonymous {
		m.transports[session.RoleAnonymous].ClearHandle(w)
	}
	m.transports[sess.Role].SetHandle(w, sess.Handle, m.sessions.Config().TTL(sess.Role))
}

func (m *Module) throttle(action string) func(http.Handler) http.Handler {
	if m.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimiter.Middleware(m.limiter, ratelimiter.ByIP(action), web.RateLimitErrorHandler(m.logger))
}

func (m *Module) handle(r *http.Request, role session.Role) string {
	h, _ := m.transports[role].GetHandle(r)
	return h
}
