package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusBadRequest},
		{store.ErrTaskNotFound, http.StatusNotFound},
		{store.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", store.ErrAvatarNotFound), http.StatusNotFound},
		{store.ErrEmailExists, http.StatusBadRequest},
		{domain.ErrPasswordTooShort, http.StatusBadRequest},
		{domain.ErrUnknownField, http.StatusBadRequest},
		{avatar.ErrUnsupportedImage, http.StatusBadRequest},
		{store.ErrInvalidEntity, http.StatusBadRequest},
		{shared.ErrInvalidJSON, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		{&service.ServiceError{Service: "task", Op: "list", Err: errors.New("conn reset")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "An unexpected error occurred"},
		{auth.ErrInvalidToken, "Please authenticate."},
		{service.ErrInvalidCredentials, "Unable to login"},
		{store.ErrTaskNotFound, "Task not found"},
		{store.ErrUserNotFound, "User not found"},
		{store.ErrAvatarNotFound, "Avatar not found"},
		{store.ErrEmailExists, "Email already exists"},
		{domain.NewValidationError("owner", "may not be updated", domain.ErrUnknownField), "Invalid updates!"},
		{domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), "Invalid id: has invalid format"},
		{domain.ErrPasswordForbidden, `Password cannot contain "password"`},
		{domain.ErrEmptyDescription, "Description cannot be empty"},
		{errors.Join(avatar.ErrUnsupportedImage, errors.New("http: no such file")), "Please upload an image"},
		{fmt.Errorf("%w: secret dsn postgres://u:p@h", errors.New("dial")), "An unexpected error occurred"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := validator.New().Struct(SignupRequest{Email: "anna@gmail.com", Password: "x"})
	assert.Equal(t, "Invalid Name: required field", SanitizeValidationError(err))

	err = validator.New().Struct(SignupRequest{Name: "Ann", Email: "nope", Password: "x"})
	assert.Equal(t, "Invalid Email: invalid email format", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
