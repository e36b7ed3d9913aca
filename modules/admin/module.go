package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/svc/account"
)

// Module serves the back-office API: admin sessions and usage analytics.
type Module struct {
	svc       *account.Service
	sessions  *session.Manager
	transport session.Transport
	limiter   ratelimiter.RateLimiter
	logger    *slog.Logger
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

// WithRateLimiter throttles admin login attempts per client address.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(m *Module) { m.limiter = l }
}

// New creates the admin module.
func New(svc *account.Service, sessions *session.Manager, cookies *cookie.Manager, opts ...Option) *Module {
	m := &Module{
		svc:       svc,
		sessions:  sessions,
		transport: session.Transports(sessions.Config(), cookies)[session.RoleAdmin],
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle returns the module router, meant to be mounted under /admin.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	onError := handler.NewErrorHandler(m.logger)

	login := handler.Wrap(m.login,
		handler.WithBinders[LoginRequest](handler.BindJSON()),
		handler.WithErrorHandler[LoginRequest](onError),
	)
	if m.limiter != nil {
		r.With(ratelimiter.Middleware(m.limiter, ratelimiter.ByIP("admin-login"), web.RateLimitErrorHandler(m.logger))).Post("/login", login)
	} else {
		r.Post("/login", login)
	}
	r.Post("/logout", handler.Wrap(m.logout, handler.WithErrorHandler[struct{}](onError)))

	r.Group(func(r chi.Router) {
		r.Use(m.sessions.RequireRoleMiddleware(m.transport, session.RoleAdmin, web.SessionErrorHandler(m.logger)))
		r.Post("/refresh-session", handler.Wrap(m.refreshSession, handler.WithErrorHandler[struct{}](onError)))
		r.Get("/analytics", handler.Wrap(m.analytics, handler.WithErrorHandler[struct{}](onError)))
	})

	return r
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	SessionToken string    `json:"session_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (m *Module) login(ctx handler.Context, req LoginRequest) handler.Response {
	sess, err := m.svc.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		return web.Error(err)
	}
	m.transport.SetHandle(ctx.ResponseWriter(), sess.Handle, m.sessions.Config().TTL(session.RoleAdmin))
	return handler.JSON(SessionResponse{SessionToken: sess.Handle, ExpiresAt: sess.ExpiresAt})
}

func (m *Module) logout(ctx handler.Context, _ struct{}) handler.Response {
	handle, _ := m.transport.GetHandle(ctx.Request())
	if err := m.svc.EndSession(ctx, handle); err != nil {
		return web.Error(err)
	}
	m.transport.ClearHandle(ctx.ResponseWriter())
	return handler.Empty()
}

func (m *Module) refreshSession(ctx handler.Context, _ struct{}) handler.Response {
	handle, _ := m.transport.GetHandle(ctx.Request())
	sess, err := m.svc.RefreshSession(ctx, handle, session.RoleAdmin)
	if err != nil {
		return web.Error(err)
	}
	m.transport.SetHandle(ctx.ResponseWriter(), sess.Handle, m.sessions.Config().TTL(session.RoleAdmin))
	return handler.JSON(SessionResponse{ExpiresAt: sess.ExpiresAt})
}

func (m *Module) analytics(ctx handler.Context, _ struct{}) handler.Response {
	summary, err := m.svc.AnalyticsSummary(ctx)
	if err != nil {
		return web.Error(err)
	}
	return handler.JSON(summary)
}
