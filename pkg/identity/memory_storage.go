package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process Storage with the same uniqueness rules as
// the Postgres one.
type MemoryStorage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Identity
	byEmail map[string]uuid.UUID
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:    make(map[uuid.UUID]*Identity),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStorage) Create(_ context.Context, id *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[id.Email]; ok {
		return ErrConflict
	}
	c := *id
	m.byID[id.ID] = &c
	m.byEmail[id.Email] = id.ID
	return nil
}

func (m *MemoryStorage) GetByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *rec
	return &c, nil
}

func (m *MemoryStorage) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	m.mu.RLock()
	id, ok := m.byEmail[email]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryStorage) Activate(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Active {
		return false, nil
	}
	rec.Active = true
	return true, nil
}

func (m *MemoryStorage) SetPasswordHash(_ context.Context, id uuid.UUID, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.PasswordHash = hash
	return nil
}

func (m *MemoryStorage) UpdateProfile(_ context.Context, id uuid.UUID, update ProfileUpdate) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(rec)
	c := *rec
	return &c, nil
}

func (m *MemoryStorage) CountByRole(_ context.Context, role Role) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, rec := range m.byID {
		if rec.Role == role {
			n++
		}
	}
	return n, nil
}

var _ Storage = (*MemoryStorage)(nil)
