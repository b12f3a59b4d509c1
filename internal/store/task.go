package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// TaskSortField names a task attribute that lists may be ordered by.
type TaskSortField string

// Sortable task fields, spelled as they appear in the sortBy query parameter.
const (
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
	SortByCreatedAt   TaskSortField = "createdAt"
	SortByUpdatedAt   TaskSortField = "updatedAt"
)

// ParseTaskSortField returns the field named by s, or false when s is not sortable.
func ParseTaskSortField(s string) (TaskSortField, bool) {
	switch f := TaskSortField(s); f {
	case SortByDescription, SortByCompleted, SortByCreatedAt, SortByUpdatedAt:
		return f, true
	}
	return "", false
}

// TaskQuery narrows and orders a task listing. The zero value lists every task
// of the owner in insertion order.
type TaskQuery struct {
	// Completed, when set, keeps only tasks with that completion state.
	Completed *bool
	// SortBy is empty for insertion order.
	SortBy TaskSortField
	Desc   bool
	// Limit of zero means no limit.
	Limit int
	Skip  int
}

// TaskStore defines persistence for tasks. Every method except Create and
// DeleteByOwner takes the owner ID and only ever touches that owner's tasks.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks narrowed and ordered by q.
	List(ctx context.Context, ownerID uuid.UUID, q TaskQuery) ([]*domain.Task, error)

	// Update writes description, completed and updated_at of task.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and returns it.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task of the owner and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
