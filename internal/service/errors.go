package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/phrazzld/task-manager-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrInvalidCredentials is returned by Login for an unknown e-mail and for a
	// wrong password alike, so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated indicates the request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Fields that may be changed through a profile or task update.
var (
	UserUpdateFields = []string{"name", "email", "password", "age"}
	TaskUpdateFields = []string{"description", "completed"}
)

// CheckAllowedFields returns domain.ErrUnknownField, naming the first offender,
// when any key is not in allowed.
func CheckAllowedFields(keys []string, allowed []string) error {
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return domain.NewValidationError(k, "may not be updated", domain.ErrUnknownField)
		}
	}
	return nil
}

// ServiceError records which service operation failed while keeping the
// underlying error reachable through errors.Is and errors.As.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err; a nil err yields nil.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}
