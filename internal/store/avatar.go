package store

import (
	"context"

	"github.com/google/uuid"
)

// AvatarStore keeps one processed avatar image per user.
type AvatarStore interface {
	// Save stores data as the user's avatar, replacing any previous one.
	Save(ctx context.Context, userID uuid.UUID, data []byte) error

	// Get returns the user's avatar.
	// Returns ErrAvatarNotFound when no avatar is stored.
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// Delete removes the user's avatar. Deleting a missing avatar is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}
