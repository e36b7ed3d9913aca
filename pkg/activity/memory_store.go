package activity

import (
	"context"
	"sync"
	"time"
)

type dayKey struct {
	day     string
	visitor string
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[dayKey]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[dayKey]time.Time)}
}

func (s *MemoryStore) Upsert(_ context.Context, day time.Time, visitorID string, at time.Time) error {
	key := dayKey{day: day.Format(time.DateOnly), visitor: visitorID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.records[key]; !ok || at.After(cur) {
		s.records[key] = at
	}
	return nil
}

func (s *MemoryStore) CountUpdatedSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for k, last := range s.records {
		if !last.Before(since) {
			seen[k.visitor] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (s *MemoryStore) CountOnDay(_ context.Context, day time.Time) (int64, error) {
	d := day.Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for k := range s.records {
		if k.day == d {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountSinceDay(_ context.Context, day time.Time) (int64, error) {
	d := day.Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range s.records {
		if k.day >= d {
			seen[k.visitor] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

// LastUpdated returns the record for (day, visitorID), if any.
func (s *MemoryStore) LastUpdated(day time.Time, visitorID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.records[dayKey{day: day.Format(time.DateOnly), visitor: visitorID}]
	return t, ok
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ Store = (*MemoryStore)(nil)
