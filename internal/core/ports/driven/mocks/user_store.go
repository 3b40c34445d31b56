package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
)

// Ensure MockUserStore implements UserStore
var _ driven.UserStore = (*MockUserStore)(nil)

// MockUserStore is a mock implementation of UserStore for testing
type MockUserStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	byUsername map[string]*domain.User
	lookups    int

	// Err, when set, is returned by every read to simulate an unavailable store
	Err error
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUsername[user.Username]; ok && existing.ID != user.ID {
		return domain.ErrAlreadyExists
	}
	if previous, ok := m.users[user.ID]; ok && previous.Username != user.Username {
		delete(m.byUsername, previous.Username)
	}
	m.users[user.ID] = user
	m.byUsername[user.Username] = user
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byUsername, user.Username)
	delete(m.users, id)
	return nil
}

func (m *MockUserStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Helper methods for testing

// SetErr changes the simulated store failure while other goroutines use the store
func (m *MockUserStore) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MockUserStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Lookups returns how many times GetByUsername was called
func (m *MockUserStore) Lookups() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookups
}
