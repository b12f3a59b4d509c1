// Package main implements the entry point for the task manager API server,
// which serves user accounts, sessions, avatars and personal task lists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/task-manager-api/internal/config"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command (up, down, status, reset, version) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Printf("task manager API failed: %v", err)
		os.Exit(1)
	}
}

// run loads configuration, prepares logging and the database, then either
// executes a migration command or serves HTTP until a shutdown signal.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, migrateCmd, logger)
	}

	if err := runMigrations(ctx, db, "up", logger); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from environment
// variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"avatar_backend", cfg.Avatar.Backend)

	return cfg, nil
}
