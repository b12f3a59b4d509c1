package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// TokenStore keeps the list of bearer tokens that are currently active for each user.
// A token that verifies cryptographically but is absent from this list is rejected.
type TokenStore interface {
	// Add appends token to the user's active list.
	Add(ctx context.Context, userID uuid.UUID, token string) error

	// Exists reports whether token is in the user's active list.
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// Remove deletes a single token. Removing a token that is not present is not an error.
	Remove(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveAll deletes every token of the user and returns how many were removed.
	RemoveAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new TokenStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TokenStore
}
