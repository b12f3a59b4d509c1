package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrPasswordMismatch is returned by PasswordHasher.Compare when the plaintext does not match.
	ErrPasswordMismatch = errors.New("password does not match")
)
