package session

import "time"

// Config holds per-tier lifetimes and transport names.
type Config struct {
	AnonymousTTL time.Duration `env:"SESSION_ANONYMOUS_TTL" envDefault:"24h"`
	CustomerTTL  time.Duration `env:"SESSION_CUSTOMER_TTL" envDefault:"168h"`
	AdminTTL     time.Duration `env:"SESSION_ADMIN_TTL" envDefault:"8h"`

	CustomerCookie  string `env:"SESSION_COOKIE_NAME" envDefault:"session_id"`
	AnonymousCookie string `env:"SESSION_ANONYMOUS_COOKIE_NAME" envDefault:"anonymous_session_id"`
	AdminCookie     string `env:"SESSION_ADMIN_COOKIE_NAME" envDefault:"admin_session_id"`

	// HeaderName carries "Bearer <handle>" for API clients; empty disables it.
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:"Authorization"`

	// CleanupInterval for the in-memory store (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AnonymousTTL:    24 * time.Hour,
		CustomerTTL:     7 * 24 * time.Hour,
		AdminTTL:        8 * time.Hour,
		CustomerCookie:  "session_id",
		AnonymousCookie: "anonymous_session_id",
		AdminCookie:     "admin_session_id",
		HeaderName:      "Authorization",
		CleanupInterval: 5 * time.Minute,
	}
}

// TTL returns the default lifetime for role. Unknown roles get the anonymous TTL.
func (c Config) TTL(role Role) time.Duration {
	switch role {
	case RoleCustomer:
		return c.CustomerTTL
	case RoleAdmin:
		return c.AdminTTL
	default:
		return c.AnonymousTTL
	}
}

// CookieName returns the cookie that carries handles of the given role.
func (c Config) CookieName(role Role) string {
	switch role {
	case RoleCustomer:
		return c.CustomerCookie
	case RoleAdmin:
		return c.AdminCookie
	default:
		return c.AnonymousCookie
	}
}

// NewFromConfig creates a Manager from cfg. Callers still provide the store.
func NewFromConfig(cfg Config, store Store, opts ...Option) *Manager {
	return New(store, append([]Option{WithConfig(cfg)}, opts...)...)
}
