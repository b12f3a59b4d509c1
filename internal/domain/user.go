package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password rules.
const (
	MinPasswordLength = 7
	// ForbiddenPasswordFragment may not appear anywhere in a password, in any case.
	ForbiddenPasswordFragment = "password"
)

// User validation errors. Each wraps ErrValidation.
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyName           = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrEmptyEmail          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	ErrPasswordForbidden   = fmt.Errorf("%w: password cannot contain %q", ErrValidation, ForbiddenPasswordFragment)
	ErrEmptyHashedPassword = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
	ErrNegativeAge         = fmt.Errorf("%w: age must be a positive number", ErrValidation)
)

var emailValidator = validator.New()

// User represents a registered user of the task manager.
// Tokens and the avatar image are kept by their own stores and never live on this struct.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set during signup/profile update
	HashedPassword string    `json:"-"`
	Age            int       `json:"age"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with a fresh ID and timestamps.
// Name and email are normalized before validation.
//
// The caller is responsible for hashing Password before the user is stored.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  strings.TrimSpace(password),
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.validateProfile(); err != nil {
		return nil, err
	}
	if err := ValidatePassword(user.Password); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// A plaintext Password, when set, must satisfy ValidatePassword; otherwise a
// HashedPassword is required.
func (u *User) Validate() error {
	if err := u.validateProfile(); err != nil {
		return err
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}

	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

func (u *User) validateProfile() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.Age < 0 {
		return ErrNegativeAge
	}

	return nil
}

// ValidateEmail checks that email is present and shaped like an address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum length and the forbidden fragment.
func ValidatePassword(password string) error {
	password = strings.TrimSpace(password)
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(password), ForbiddenPasswordFragment) {
		return ErrPasswordForbidden
	}
	return nil
}
