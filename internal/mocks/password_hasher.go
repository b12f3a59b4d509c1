package mocks

import (
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// HashPrefix is prepended to plaintext by MockPasswordHasher.Hash.
const HashPrefix = "hashed:"

// MockPasswordHasher implements auth.PasswordHasher with a reversible fake hash.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return HashPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != HashPrefix+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
