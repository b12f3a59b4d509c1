package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockTokenStore is an in-memory store.TokenStore.
type MockTokenStore struct {
	mu     sync.Mutex
	tokens map[uuid.UUID][]string

	AddFn       func(ctx context.Context, userID uuid.UUID, token string) error
	ExistsErr   error
	RemoveAllFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

var _ store.TokenStore = (*MockTokenStore)(nil)

// NewMockTokenStore creates an empty MockTokenStore.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[uuid.UUID][]string)}
}

// Tokens returns a copy of the user's active tokens in insertion order.
func (m *MockTokenStore) Tokens(userID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens[userID]...)
}

// Add implements store.TokenStore.Add
func (m *MockTokenStore) Add(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, userID, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = append(m.tokens[userID], token)
	return nil
}

// Exists implements store.TokenStore.Exists
func (m *MockTokenStore) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// Remove implements store.TokenStore.Remove
func (m *MockTokenStore) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tokens[userID][:0]
	for _, t := range m.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	m.tokens[userID] = kept
	return nil
}

// RemoveAll implements store.TokenStore.RemoveAll
func (m *MockTokenStore) RemoveAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.RemoveAllFn != nil {
		return m.RemoveAllFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.tokens[userID]))
	delete(m.tokens, userID)
	return n, nil
}

// WithTx implements store.TokenStore.WithTx
func (m *MockTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return m
}
