package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// PostgresAvatarStore implements store.AvatarStore on the users.avatar column.
// Avatars therefore disappear together with the user row.
type PostgresAvatarStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAvatarStore creates a new PostgresAvatarStore.
// If logger is nil, a default logger will be used.
func NewPostgresAvatarStore(db store.DBTX, logger *slog.Logger) *PostgresAvatarStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAvatarStore{
		db:     db,
		logger: logger.With(slog.String("component", "avatar_store")),
	}
}

var _ store.AvatarStore = (*PostgresAvatarStore)(nil)

// Save implements store.AvatarStore.Save
func (s *PostgresAvatarStore) Save(ctx context.Context, userID uuid.UUID, data []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET avatar = $1 WHERE id = $2`,
		data, userID)
	if err != nil {
		log.Error("failed to save avatar",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to save avatar: %w", MapError(err))
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// Get implements store.AvatarStore.Get
func (s *PostgresAvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT avatar FROM users WHERE id = $1`,
		userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", MapError(err))
	}
	if len(data) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return data, nil
}

// Delete implements store.AvatarStore.Delete
func (s *PostgresAvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", MapError(err))
	}
	return nil
}
