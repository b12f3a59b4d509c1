package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// Messages shared by several responses.
const (
	msgUnexpected     = "An unexpected error occurred"
	msgUnauthenticate = "Please authenticate."
	msgUnableToLogin  = "Unable to login"
	msgInvalidUpdates = "Invalid updates!"
	msgInvalidBody    = "Invalid request format"
)

// domainValidationErrors lists validation sentinels whose text is safe to show.
var domainValidationErrors = []error{
	domain.ErrEmptyName,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordForbidden,
	domain.ErrNegativeAge,
	domain.ErrEmptyDescription,
	avatar.ErrUnsupportedImage,
	avatar.ErrImageTooLarge,
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	// Login failures are reported as a bad request with a single message
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Duplicate e-mail is answered like any other invalid signup
	case store.IsDuplicateError(err):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrInvalidJSON):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, service.ErrUnauthenticated):
		return msgUnauthenticate

	case errors.Is(err, service.ErrInvalidCredentials):
		return msgUnableToLogin

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrAvatarNotFound):
		return "Avatar not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, domain.ErrUnknownField):
		return msgInvalidUpdates

	case errors.Is(err, shared.ErrInvalidJSON):
		return msgInvalidBody

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	}

	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return validationText(sentinel)
		}
	}

	if errors.Is(err, domain.ErrValidation) {
		return "Validation error"
	}

	return msgUnexpected
}

// validationText turns "validation failed: name cannot be empty" into
// "Name cannot be empty".
func validationText(sentinel error) string {
	msg := strings.TrimPrefix(sentinel.Error(), domain.ErrValidation.Error()+": ")
	if msg == "" {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// SanitizeValidationError removes sensitive details from validator errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'SignupRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status code and safe message, logs the
// redacted error and writes the response.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, opts ...shared.ResponseOption) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

// respondValidation answers 400 for a validator.Struct failure.
func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
