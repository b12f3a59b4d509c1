package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// PostgresTokenStore implements store.TokenStore on the user_tokens table.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgresTokenStore.
// If logger is nil, a default logger will be used.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

var _ store.TokenStore = (*PostgresTokenStore)(nil)

// WithTx implements store.TokenStore.WithTx
func (s *PostgresTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &PostgresTokenStore{db: tx, logger: s.logger}
}

// Add implements store.TokenStore.Add
func (s *PostgresTokenStore) Add(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_tokens (user_id, token) VALUES ($1, $2)`,
		userID, token)
	if err != nil {
		log.Error("failed to add token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to add token: %w", MapError(err))
	}
	return nil
}

// Exists implements store.TokenStore.Exists
func (s *PostgresTokenStore) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`,
		userID, token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up token: %w", MapError(err))
	}
	return exists, nil
}

// Remove implements store.TokenStore.Remove
func (s *PostgresTokenStore) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`,
		userID, token)
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", MapError(err))
	}
	return nil
}

// RemoveAll implements store.TokenStore.RemoveAll
func (s *PostgresTokenStore) RemoveAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove tokens: %w", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("removed all tokens",
		slog.String("user_id", userID.String()),
		slog.Int64("count", n))
	return n, nil
}
