package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	svc := service.NewTaskService(mocks.NewMockTaskStore(), nil)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, "  Buy milk ", false)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Description)
	assert.Equal(t, owner, task.OwnerID)
	assert.False(t, task.Completed)

	_, err = svc.Create(context.Background(), owner, "   ", true)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskService_CreateStoreFailure(t *testing.T) {
	tasks := mocks.NewMockTaskStore()
	tasks.CreateFn = func(ctx context.Context, task *domain.Task) error {
		return errors.New("connection refused")
	}
	svc := service.NewTaskService(tasks, nil)

	_, err := svc.Create(context.Background(), uuid.New(), "x", false)
	var se *service.ServiceError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "create", se.Op)
}

func TestTaskService_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTaskService(mocks.NewMockTaskStore(), nil)
	owner, stranger := uuid.New(), uuid.New()

	task, err := svc.Create(ctx, owner, "private", false)
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = svc.Update(ctx, stranger, task.ID, service.TaskUpdate{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = svc.Delete(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	list, err := svc.List(ctx, stranger, store.TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTaskService(mocks.NewMockTaskStore(), nil)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "draft", false)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	updated, err := svc.Update(ctx, owner, task.ID, service.TaskUpdate{
		Description: strPtr(" final "),
		Completed:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Description)
	assert.True(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, owner, task.ID, service.TaskUpdate{Description: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Description)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTaskService(mocks.NewMockTaskStore(), nil)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "temporary", false)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = svc.Delete(ctx, owner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTaskService(mocks.NewMockTaskStore(), nil)
	owner := uuid.New()

	first, err := svc.Create(ctx, owner, "First task", false)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.Create(ctx, owner, "Second task", true)
	require.NoError(t, err)
	_, err = svc.Update(ctx, owner, first.ID, service.TaskUpdate{})
	require.NoError(t, err)

	names := func(q store.TaskQuery) []string {
		t.Helper()
		tasks, err := svc.List(ctx, owner, q)
		require.NoError(t, err)
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Description)
		}
		return out
	}

	assert.Equal(t, []string{"First task", "Second task"}, names(store.TaskQuery{}))
	assert.Equal(t, []string{"Second task", "First task"},
		names(store.TaskQuery{SortBy: store.SortByCreatedAt, Desc: true}))
	assert.Equal(t, []string{"Second task"}, names(store.TaskQuery{Completed: boolPtr(true)}))
	assert.Equal(t, []string{"First task"}, names(store.TaskQuery{Completed: boolPtr(false)}))
	assert.Equal(t, []string{"Second task"}, names(store.TaskQuery{Limit: 1, Skip: 1}))
	assert.Equal(t, []string{"First task", "Second task"}, names(store.TaskQuery{Limit: -3, Skip: -1}))
}
