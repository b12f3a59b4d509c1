package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockAvatarStore is an in-memory store.AvatarStore.
type MockAvatarStore struct {
	mu      sync.Mutex
	avatars map[uuid.UUID][]byte

	SaveErr   error
	DeleteErr error
}

var _ store.AvatarStore = (*MockAvatarStore)(nil)

// NewMockAvatarStore creates an empty MockAvatarStore.
func NewMockAvatarStore() *MockAvatarStore {
	return &MockAvatarStore{avatars: make(map[uuid.UUID][]byte)}
}

// Save implements store.AvatarStore.Save
func (m *MockAvatarStore) Save(ctx context.Context, userID uuid.UUID, data []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avatars[userID] = append([]byte(nil), data...)
	return nil
}

// Get implements store.AvatarStore.Get
func (m *MockAvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.avatars[userID]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete implements store.AvatarStore.Delete
func (m *MockAvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.avatars, userID)
	return nil
}
