package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-manager-api/internal/api"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/events"
	"github.com/phrazzld/task-manager-api/internal/job"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/s3"
	"github.com/phrazzld/task-manager-api/internal/platform/sendgrid"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// application holds the shared dependencies so they can be released together
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	tokenStore  store.TokenStore
	taskStore   store.TaskStore
	avatarStore store.AvatarStore

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	eventEmitter *events.InMemoryEventEmitter
	jobQueue     *job.Queue
	workerPool   *job.WorkerPool

	router http.Handler
}

// newApplication wires stores, services, the notification pipeline and the
// router. The worker pool is started before it returns.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.tokenStore = postgres.NewPostgresTokenStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.avatarStore, err = newAvatarStore(ctx, cfg.Avatar, db, logger)
	if err != nil {
		return nil, err
	}

	mailer, err := newMailer(cfg.Mail, logger)
	if err != nil {
		return nil, err
	}

	app.jobQueue = job.NewQueue(cfg.Worker.QueueSize, logger)
	poolCfg := job.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.Worker.Count
	app.workerPool = job.NewWorkerPool(app.jobQueue, poolCfg, logger)
	app.workerPool.SetErrorHandler(func(j job.Job, err error) {
		logger.Warn("background job failed",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"error", err)
	})

	notifier := notify.NewNotifier(app.jobQueue, mailer, notify.Address{
		Email: cfg.Mail.FromAddress,
		Name:  cfg.Mail.FromName,
	}, logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(notifier)

	app.userService, err = service.NewUserService(service.UserServiceDeps{
		DB:      db,
		Users:   app.userStore,
		Tokens:  app.tokenStore,
		Tasks:   app.taskStore,
		Avatars: app.avatarStore,
		Hasher:  auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		JWT:     app.jwtService,
		Images:  avatar.NewProcessor(cfg.Avatar.Size, cfg.Avatar.MaxUploadBytes).WithMaxDimension(cfg.Avatar.MaxDimension),
		Events:  app.eventEmitter,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	app.taskService = service.NewTaskService(app.taskStore, logger)

	app.router = api.NewRouter(api.RouterConfig{
		Users:  api.NewUserHandler(app.userService, cfg.Avatar.MaxUploadBytes, logger),
		Tasks:  api.NewTaskHandler(app.taskService, logger),
		Auth:   middleware.NewAuthMiddleware(app.jwtService, app.tokenStore, app.userStore, logger),
		Logger: logger,
	})

	app.workerPool.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// newAvatarStore selects the avatar backend named in the configuration.
func newAvatarStore(
	ctx context.Context,
	cfg config.AvatarConfig,
	db *sql.DB,
	logger *slog.Logger,
) (store.AvatarStore, error) {
	if cfg.Backend != "s3" {
		return postgres.NewPostgresAvatarStore(db, logger), nil
	}

	client, err := s3.NewClient(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	logger.Info("Avatars stored in S3", "bucket", cfg.S3.Bucket, "region", cfg.S3.Region)
	return s3.NewAvatarStore(client, cfg.S3.Bucket, logger), nil
}

// newMailer returns the SendGrid mailer when an API key is configured and a
// logging mailer otherwise.
func newMailer(cfg config.MailConfig, logger *slog.Logger) (notify.Mailer, error) {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("No SendGrid API key configured, e-mails will only be logged")
		return notify.NewLogMailer(logger), nil
	}

	mailer, err := sendgrid.NewMailer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create SendGrid mailer: %w", err)
	}
	return mailer, nil
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains pending e-mail jobs and closes the database.
func (app *application) cleanup() {
	if app.jobQueue != nil {
		app.jobQueue.Close()
	}

	if app.workerPool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.workerPool.Stop(ctx); err != nil {
			app.logger.Warn("Worker pool did not drain before shutdown", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
