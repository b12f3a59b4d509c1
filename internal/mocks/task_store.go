package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

type storedTask struct {
	seq  int64
	task domain.Task
}

// MockTaskStore is an in-memory store.TaskStore. List applies the same
// filtering, ordering and paging rules as the PostgreSQL store.
type MockTaskStore struct {
	mu    sync.Mutex
	seq   int64
	tasks map[uuid.UUID]*storedTask

	CreateFn        func(ctx context.Context, task *domain.Task) error
	ListErr         error
	DeleteByOwnerFn func(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*storedTask)}
}

// CountByOwner returns how many tasks ownerID has.
func (m *MockTaskStore) CountByOwner(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, st := range m.tasks {
		if st.task.OwnerID == ownerID {
			n++
		}
	}
	return n
}

// Create implements store.TaskStore.Create
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	m.seq++
	m.tasks[task.ID] = &storedTask{seq: m.seq, task: *task}
	return nil
}

// Get implements store.TaskStore.Get
func (m *MockTaskStore) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tasks[id]
	if !ok || st.task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	t := st.task
	return &t, nil
}

// List implements store.TaskStore.List
func (m *MockTaskStore) List(ctx context.Context, ownerID uuid.UUID, q store.TaskQuery) ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	var rows []*storedTask
	for _, st := range m.tasks {
		if st.task.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && st.task.Completed != *q.Completed {
			continue
		}
		cp := *st
		rows = append(rows, &cp)
	}
	m.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if c := compareTasks(&rows[i].task, &rows[j].task, q.SortBy); c != 0 {
			if q.Desc {
				return c > 0
			}
			return c < 0
		}
		return rows[i].seq < rows[j].seq
	})

	if q.Skip > 0 {
		if q.Skip >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Skip:]
		}
	}
	if q.Limit > 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}

	out := make([]*domain.Task, 0, len(rows))
	for _, st := range rows {
		t := st.task
		out = append(out, &t)
	}
	return out, nil
}

// Update implements store.TaskStore.Update
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tasks[task.ID]
	if !ok || st.task.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	st.task.Description = task.Description
	st.task.Completed = task.Completed
	st.task.UpdatedAt = task.UpdatedAt
	return nil
}

// Delete implements store.TaskStore.Delete
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tasks[id]
	if !ok || st.task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	t := st.task
	return &t, nil
}

// DeleteByOwner implements store.TaskStore.DeleteByOwner
func (m *MockTaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.DeleteByOwnerFn != nil {
		return m.DeleteByOwnerFn(ctx, ownerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, st := range m.tasks {
		if st.task.OwnerID == ownerID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements store.TaskStore.WithTx
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

func compareTasks(a, b *domain.Task, field store.TaskSortField) int {
	switch field {
	case store.SortByDescription:
		switch {
		case a.Description < b.Description:
			return -1
		case a.Description > b.Description:
			return 1
		}
	case store.SortByCompleted:
		switch {
		case !a.Completed && b.Completed:
			return -1
		case a.Completed && !b.Completed:
			return 1
		}
	case store.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case store.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
