package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithTTL overrides the lifetime of a single role.
func WithTTL(role Role, ttl time.Duration) Option {
	return func(m *Manager) {
		switch role {
		case RoleCustomer:
			m.config.CustomerTTL = ttl
		case RoleAdmin:
			m.config.AdminTTL = ttl
		case RoleAnonymous:
			m.config.AnonymousTTL = ttl
		}
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHandleGenerator replaces the random handle source. Intended for tests.
func WithHandleGenerator(fn func() (string, error)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newHandle = fn
		}
	}
}
