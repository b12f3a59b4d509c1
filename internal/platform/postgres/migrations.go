package postgres

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

// Migrations holds the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"

// ConfigureGoose points goose at the embedded migrations.
// goose keeps this in package-level state, so it applies process-wide.
func ConfigureGoose(logger goose.Logger) error {
	goose.SetBaseFS(Migrations)
	goose.SetTableName(MigrationTableName)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every pending migration.
func MigrateUp(db *sql.DB) error {
	if err := ConfigureGoose(nil); err != nil {
		return err
	}
	if err := goose.Up(db, MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
