package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

// Manager issues, resolves, extends and revokes sessions over a Store.
type Manager struct {
	store     Store
	config    Config
	clock     clock.Clock
	logger    *slog.Logger
	newHandle func() (string, error)
}

// New creates a session manager. A nil store falls back to an in-memory one.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		config:    DefaultConfig(),
		clock:     clock.New(),
		logger:    logger.Discard(),
		newHandle: generateHandle,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval, WithMemoryClock(m.clock))
	}

	return m
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	return m.config
}

// CreateSession always issues a fresh handle and stores the payload with the
// role's default TTL.
func (m *Manager) CreateSession(ctx context.Context, email string, role Role, profile Profile) (*Session, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role != RoleAnonymous && strings.TrimSpace(email) == "" {
		return nil, errors.Join(ErrInvalidSession, errors.New("identity is required for authenticated sessions"))
	}

	handle, err := m.newHandle()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	ttl := m.config.TTL(role)
	s := &Session{
		Handle:    handle,
		Role:      role,
		Email:     email,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := m.store.Put(ctx, handle, s, ttl); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	m.logger.DebugContext(ctx, "session created",
		logger.Component("session"),
		logger.Role(string(role)),
	)

	return s, nil
}

// CreateAnonymous issues a session with no identity reference.
func (m *Manager) CreateAnonymous(ctx context.Context) (*Session, error) {
	return m.CreateSession(ctx, "", RoleAnonymous, Profile{})
}

// Resolve maps a handle to its session. A missing, expired or unknown handle
// resolves to the anonymous fallback with an empty Handle. The error is only
// set when the store itself fails.
func (m *Manager) Resolve(ctx context.Context, handle string) (*Session, error) {
	if handle == "" {
		return Anonymous(), nil
	}

	s, err := m.store.Get(ctx, handle)
	if errors.Is(err, ErrSessionNotFound) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), errors.Join(ErrStoreFailure, err)
	}

	return s, nil
}

// RequireRole resolves handle and checks its role. A handle that does not
// resolve yields ErrUnauthorized; a live session with another role yields
// ErrForbidden.
func (m *Manager) RequireRole(ctx context.Context, handle string, role Role) (*Session, error) {
	s, err := m.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !s.IsLive() {
		return nil, ErrUnauthorized
	}
	if s.Role != role {
		return nil, ErrForbidden
	}
	if role != RoleAnonymous && !s.HasIdentity() {
		return nil, ErrUnauthorized
	}
	return s, nil
}

// Extend slides the expiry of a live handle by its role's TTL. Role and
// identity are never touched.
func (m *Manager) Extend(ctx context.Context, handle string) (*Session, error) {
	s, err := m.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !s.IsLive() {
		return nil, ErrUnauthorized
	}

	ttl := m.config.TTL(s.Role)
	if err := m.store.Touch(ctx, handle, ttl); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}

	s.ExpiresAt = m.clock.Now().Add(ttl)
	return s, nil
}

// UpdateSnapshot replaces the cached profile of a live session and keeps its
// current expiry.
func (m *Manager) UpdateSnapshot(ctx context.Context, handle string, profile Profile) (*Session, error) {
	s, err := m.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !s.IsLive() {
		return nil, ErrUnauthorized
	}

	s.Profile = profile
	if err := m.store.Replace(ctx, handle, s); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}

	return s, nil
}

// Delete revokes a handle. Deleting a handle that is already gone succeeds.
func (m *Manager) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := m.store.Delete(ctx, handle); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// Login deletes the caller's anonymous handle, if any, and issues a new
// authenticated one. Nothing from the anonymous payload is carried over.
func (m *Manager) Login(ctx context.Context, anonymousHandle, email string, role Role, profile Profile) (*Session, error) {
	if role == RoleAnonymous {
		return nil, ErrInvalidRole
	}

	prev, err := m.Resolve(ctx, anonymousHandle)
	if err != nil {
		return nil, err
	}
	if prev.IsLive() && prev.IsAnonymous() {
		if err := m.Delete(ctx, anonymousHandle); err != nil {
			return nil, err
		}
	}

	return m.CreateSession(ctx, email, role, profile)
}

// generateHandle returns 32 random bytes, base64url encoded.
func generateHandle() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
