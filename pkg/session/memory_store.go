package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Entries expire passively against the
// injected clock; an optional sweep reclaims memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	clock    clock.Clock
	ticker   *time.Ticker
	done     chan struct{}
	once     sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock sets the time source used for expiry.
func WithMemoryClock(c clock.Clock) MemoryStoreOption {
	return func(m *MemoryStore) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMemoryStore creates an in-memory store; a positive cleanupInterval
// starts a background sweep of expired entries.
func NewMemoryStore(cleanupInterval time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		clock:    clock.New(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if cleanupInterval > 0 {
		m.ticker = time.NewTicker(cleanupInterval)
		go m.cleanupLoop()
	}

	return m
}

func (m *MemoryStore) Put(_ context.Context, handle string, s *Session, ttl time.Duration) error {
	if handle == "" || s == nil {
		return ErrInvalidSession
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[handle] = memoryEntry{
		session:   s.clone(),
		expiresAt: m.clock.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, handle string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[handle]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.expired(entry) {
		m.mu.Lock()
		if cur, ok := m.sessions[handle]; ok && m.expired(cur) {
			delete(m.sessions, handle)
		}
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	s := entry.session.clone()
	s.Handle = handle
	s.ExpiresAt = entry.expiresAt
	return s, nil
}

func (m *MemoryStore) Touch(_ context.Context, handle string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[handle]
	if !ok || m.expired(entry) {
		delete(m.sessions, handle)
		return ErrSessionNotFound
	}

	entry.expiresAt = m.clock.Now().Add(ttl)
	m.sessions[handle] = entry
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, handle string, s *Session) error {
	if s == nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[handle]
	if !ok || m.expired(entry) {
		delete(m.sessions, handle)
		return ErrSessionNotFound
	}

	entry.session = s.clone()
	m.sessions[handle] = entry
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	delete(m.sessions, handle)
	m.mu.Unlock()
	return nil
}

// DeleteExpired removes every expired entry.
func (m *MemoryStore) DeleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for handle, entry := range m.sessions {
		if m.expired(entry) {
			delete(m.sessions, handle)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !m.clock.Now().Before(e.expiresAt)
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.DeleteExpired()
		case <-m.done:
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
