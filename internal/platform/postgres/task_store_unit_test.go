package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestBuildListQuery(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	completed := true

	tests := []struct {
		name     string
		query    store.TaskQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "defaults to insertion order",
			query:    store.TaskQuery{},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY seq ASC`,
			wantArgs: []any{ownerID},
		},
		{
			name:     "completed filter",
			query:    store.TaskQuery{Completed: &completed},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 AND completed = $2 ORDER BY seq ASC`,
			wantArgs: []any{ownerID, true},
		},
		{
			name:     "sort descending with tiebreak",
			query:    store.TaskQuery{SortBy: store.SortByCreatedAt, Desc: true},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC, seq ASC`,
			wantArgs: []any{ownerID},
		},
		{
			name:     "unknown sort field ignored",
			query:    store.TaskQuery{SortBy: "owner_id; DROP TABLE tasks"},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY seq ASC`,
			wantArgs: []any{ownerID},
		},
		{
			name:     "pagination",
			query:    store.TaskQuery{SortBy: store.SortByDescription, Limit: 1, Skip: 1},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY description ASC, seq ASC LIMIT $2 OFFSET $3`,
			wantArgs: []any{ownerID, 1, 1},
		},
		{
			name:     "skip without limit",
			query:    store.TaskQuery{Completed: &completed, Skip: 2},
			wantSQL:  `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 AND completed = $2 ORDER BY seq ASC OFFSET $3`,
			wantArgs: []any{ownerID, true, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotSQL, gotArgs := buildListQuery(ownerID, tt.query)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func taskRows(tasks ...*domain.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "description", "completed", "owner_id", "created_at", "updated_at"})
	for _, task := range tasks {
		rows.AddRow(task.ID.String(), task.Description, task.Completed, task.OwnerID.String(), task.CreatedAt, task.UpdatedAt)
	}
	return rows
}

func TestPostgresTaskStore_Get(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	ownerID := uuid.New()
	task, err := domain.NewTask(ownerID, "First task", false)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE id = \$1 AND owner_id = \$2`).
		WithArgs(task.ID, ownerID).
		WillReturnRows(taskRows(task))

	got, err := s.Get(context.Background(), ownerID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "First task", got.Description)
	assert.Equal(t, ownerID, got.OwnerID)
}

func TestPostgresTaskStore_GetForeignOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE id = \$1 AND owner_id = \$2`).
		WillReturnRows(taskRows())

	_, err := s.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_List(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	ownerID := uuid.New()

	first, _ := domain.NewTask(ownerID, "First task", false)
	second, _ := domain.NewTask(ownerID, "Second task", true)
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	mock.ExpectQuery(`ORDER BY created_at DESC, seq ASC`).
		WithArgs(ownerID).
		WillReturnRows(taskRows(second, first))

	tasks, err := s.List(context.Background(), ownerID, store.TaskQuery{SortBy: store.SortByCreatedAt, Desc: true})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Second task", tasks[0].Description)
	assert.Equal(t, "First task", tasks[1].Description)
}

func TestPostgresTaskStore_ListEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectQuery(`SELECT .* FROM tasks`).WillReturnRows(taskRows())

	tasks, err := s.List(context.Background(), uuid.New(), store.TaskQuery{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestPostgresTaskStore_Update(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	task, _ := domain.NewTask(uuid.New(), "First task", false)

	mock.ExpectExec(`UPDATE tasks`).
		WithArgs(task.Description, task.Completed, sqlmock.AnyArg(), task.ID, task.OwnerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.Update(context.Background(), task))

	mock.ExpectExec(`UPDATE tasks`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)

	task.Description = "  "
	assert.ErrorIs(t, s.Update(context.Background(), task), domain.ErrValidation)
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	task, _ := domain.NewTask(uuid.New(), "First task", true)

	mock.ExpectQuery(`DELETE FROM tasks WHERE id = \$1 AND owner_id = \$2 RETURNING`).
		WithArgs(task.ID, task.OwnerID).
		WillReturnRows(taskRows(task))

	deleted, err := s.Delete(context.Background(), task.OwnerID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)
	assert.True(t, deleted.Completed)

	mock.ExpectQuery(`DELETE FROM tasks`).WillReturnRows(taskRows())
	_, err = s.Delete(context.Background(), task.OwnerID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_DeleteByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	ownerID := uuid.New()

	mock.ExpectExec(`DELETE FROM tasks WHERE owner_id = \$1`).
		WithArgs(ownerID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPostgresTaskStore_CreateForeignKey(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	task, _ := domain.NewTask(uuid.New(), "Orphan", false)

	mock.ExpectExec(`INSERT INTO tasks`).
		WillReturnError(newPgError(foreignKeyViolationCode, "tasks_owner_id_fkey"))

	err := s.Create(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresTaskStore_DriverErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	driverErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT .* FROM tasks`).WillReturnError(driverErr)

	_, err := s.List(context.Background(), uuid.New(), store.TaskQuery{})
	assert.ErrorIs(t, err, driverErr)
}
