package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskUpdate carries the task fields to change. Nil fields are left as they are.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService provides ownership-scoped task operations. A task that belongs to
// another user is reported as store.ErrTaskNotFound, exactly like a missing one.
type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	logger   *slog.Logger
	timeFunc func() time.Time
}

// NewTaskService creates a TaskService backed by tasks.
// If logger is nil, a default logger will be used.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) TaskService {
	if tasks == nil {
		panic("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "task_service")),
		timeFunc: time.Now,
	}
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", redact.Error(err)),
			slog.String("owner_id", ownerID.String()))
		return nil, NewServiceError("task", "create", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	tasks, err := s.tasks.List(ctx, ownerID, q)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", redact.Error(err)),
			slog.String("owner_id", ownerID.String()))
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}

// Get implements TaskService.
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, ownerID, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

// Update applies upd to the owner's task and refreshes UpdatedAt.
func (s *taskServiceImpl) Update(ctx context.Context, ownerID, id uuid.UUID, upd TaskUpdate) (*domain.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upd.Description != nil {
		task.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.timeFunc().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", id.String()))
		return nil, NewServiceError("task", "update", err)
	}
	return task, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("task", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted",
		slog.String("task_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}
