package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireUser returns the authenticated user, answering 401 when it is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}

// parseTaskQuery reads completed, sortBy, limit and skip from the query
// string. Values that cannot be used are ignored.
//
//	completed=true      only completed tasks; any other value means not completed
//	sortBy=field:desc   field is description, completed, createdAt or updatedAt
//	limit=n, skip=n     non-negative integers; limit=0 means no limit
func parseTaskQuery(v url.Values) store.TaskQuery {
	var q store.TaskQuery

	if v.Has("completed") {
		completed := v.Get("completed") == "true"
		q.Completed = &completed
	}

	if sortBy := v.Get("sortBy"); sortBy != "" {
		name, dir, _ := strings.Cut(sortBy, ":")
		if field, ok := store.ParseTaskSortField(name); ok {
			q.SortBy = field
			q.Desc = dir == "desc"
		}
	}

	q.Limit = nonNegativeInt(v.Get("limit"))
	q.Skip = nonNegativeInt(v.Get("skip"))

	return q
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
