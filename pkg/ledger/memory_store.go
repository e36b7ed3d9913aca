package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in a map guarded by a mutex.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Insert(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.Token]; ok {
		return ErrDuplicateToken
	}
	s.entries[e.Token] = e
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Consume(_ context.Context, token string, at time.Time) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.Consumed {
		return Entry{}, ErrAlreadyConsumed
	}

	e.Consumed = true
	e.ConsumedAt = &at
	s.entries[token] = e
	return e, nil
}

// ConsumeWith holds the store lock while fn runs, so a concurrent consume of
// the same token waits for the outcome.
func (s *MemoryStore) ConsumeWith(ctx context.Context, token string, at time.Time, fn ConsumeFunc) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.Consumed {
		return Entry{}, ErrAlreadyConsumed
	}

	e.Consumed = true
	e.ConsumedAt = &at
	if err := fn(ctx, e); err != nil {
		return Entry{}, err
	}
	s.entries[token] = e
	return e, nil
}

var _ Store = (*MemoryStore)(nil)
