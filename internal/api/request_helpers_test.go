package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskQuery(t *testing.T) {
	parse := func(raw string) store.TaskQuery {
		t.Helper()
		v, err := url.ParseQuery(raw)
		require.NoError(t, err)
		return parseTaskQuery(v)
	}

	assert.Equal(t, store.TaskQuery{}, parse(""))

	q := parse("completed=true")
	require.NotNil(t, q.Completed)
	assert.True(t, *q.Completed)

	for _, raw := range []string{"completed=false", "completed=yes", "completed="} {
		q = parse(raw)
		require.NotNil(t, q.Completed, raw)
		assert.False(t, *q.Completed, raw)
	}

	q = parse("sortBy=createdAt:desc")
	assert.Equal(t, store.SortByCreatedAt, q.SortBy)
	assert.True(t, q.Desc)

	q = parse("sortBy=description")
	assert.Equal(t, store.SortByDescription, q.SortBy)
	assert.False(t, q.Desc)

	q = parse("sortBy=owner:desc")
	assert.Empty(t, q.SortBy)
	assert.False(t, q.Desc)

	q = parse("limit=2&skip=3")
	assert.Equal(t, 2, q.Limit)
	assert.Equal(t, 3, q.Skip)

	q = parse("limit=-1&skip=abc")
	assert.Zero(t, q.Limit)
	assert.Zero(t, q.Skip)
}

func TestRequireUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	user, ok := requireUser(w, req)
	assert.False(t, ok)
	assert.Nil(t, user)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, msgUnauthenticate, body.Error)

	ann := &domain.User{ID: uuid.New(), Name: "Ann"}
	req = req.WithContext(shared.WithAuth(req.Context(), ann, "token"))
	w = httptest.NewRecorder()
	user, ok = requireUser(w, req)
	require.True(t, ok)
	assert.Equal(t, ann.ID, user.ID)
	assert.Equal(t, http.StatusOK, w.Code)
}
