package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockUserStore is an in-memory store.UserStore.
type MockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User

	CreateFn func(ctx context.Context, user *domain.User) error
	UpdateFn func(ctx context.Context, user *domain.User) error
	DeleteFn func(ctx context.Context, id uuid.UUID) error
	GetErr   error
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty MockUserStore.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[uuid.UUID]domain.User)}
}

// Put stores a copy of user without any checks.
func (m *MockUserStore) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	u.Password = ""
	m.users[u.ID] = u
}

// Len returns the number of stored users.
func (m *MockUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Create implements store.UserStore.Create
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	u := *user
	u.Password = ""
	m.users[u.ID] = u
	return nil
}

// GetByID implements store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	email = domain.NormalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.Update
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	u := *user
	u.Password = ""
	u.CreatedAt = existing.CreatedAt
	m.users[u.ID] = u
	return nil
}

// Delete implements store.UserStore.Delete
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// WithTx implements store.UserStore.WithTx
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

func (m *MockUserStore) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}
