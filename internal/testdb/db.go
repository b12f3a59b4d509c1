//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

var migrateOnce struct {
	sync.Once
	err error
}

// GetTestDBWithT opens a connection to the test database, applies the
// embedded migrations once per process and closes the connection when the
// test ends. The test is skipped when no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("no test database URL configured - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database %s", maskDatabaseURL(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database %s", maskDatabaseURL(dbURL))

	migrateOnce.Do(func() {
		migrateOnce.err = postgres.MigrateUp(db)
	})
	require.NoError(t, migrateOnce.err, "failed to migrate test database")

	return db
}
