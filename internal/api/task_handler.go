package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskHandler handles task requests. Every operation is scoped to the
// authenticated user.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		respondValidation(w, r, err)
		return
	}

	completed := req.Completed != nil && *req.Completed
	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, completed)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// List handles GET /tasks?completed=&sortBy=&limit=&skip=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := parseTaskQuery(r.URL.Query())
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("listing tasks",
		slog.String("user_id", user.ID.String()),
		slog.String("sort_by", string(q.SortBy)),
		slog.Bool("desc", q.Desc),
		slog.Int("limit", q.Limit),
		slog.Int("skip", q.Skip))

	tasks, err := h.tasks.List(r.Context(), user.ID, q)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Update handles PATCH /tasks/{id}. Keys outside description and completed
// reject the whole request.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	keys, err := shared.DecodePatch(r, &req)
	if checkErr := service.CheckAllowedFields(keys, service.TaskUpdateFields); checkErr != nil {
		HandleAPIError(w, r, checkErr)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user, id, service.TaskUpdate{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /tasks/{id} and returns the removed task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// userAndTaskID resolves the caller and the {id} path parameter. A malformed
// id is answered like a missing task.
func (h *TaskHandler) userAndTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("malformed task id",
			slog.String("error", err.Error()))
		HandleAPIError(w, r, store.ErrTaskNotFound)
		return uuid.Nil, uuid.Nil, false
	}

	return user.ID, id, true
}
