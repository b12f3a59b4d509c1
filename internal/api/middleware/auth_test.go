package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-long-enough-for-hs256"

type authFixture struct {
	jwt     auth.JWTService
	tokens  *mocks.MockTokenStore
	users   *mocks.MockUserStore
	handler http.Handler
	user    *domain.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	f := &authFixture{
		jwt:    jwtService,
		tokens: mocks.NewMockTokenStore(),
		users:  mocks.NewMockUserStore(),
		user:   &domain.User{ID: uuid.New(), Name: "Ann", Email: "anna@gmail.com", HashedPassword: "h"},
	}
	f.users.Put(f.user)

	mw := middleware.NewAuthMiddleware(f.jwt, f.tokens, f.users, nil)
	f.handler = mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		require.True(t, ok)
		token, ok := shared.TokenFromContext(r.Context())
		require.True(t, ok)
		id, ok := shared.UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, user.ID, id)
		_ = json.NewEncoder(w).Encode(map[string]string{"user": user.Name, "token": token})
	}))
	return f
}

func (f *authFixture) issue(t *testing.T) string {
	t.Helper()
	token, err := f.jwt.GenerateToken(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Add(context.Background(), f.user.ID, token))
	return token
}

func (f *authFixture) do(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func assertUnauthenticated(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, middleware.UnauthenticatedMessage, body.Error)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)

	w := f.do("Bearer " + token)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ann", body["user"])
	assert.Equal(t, token, body["token"])
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"empty bearer", "Bearer "},
		{"malformed token", "Bearer not-a-jwt"},
		{"tampered token", "Bearer " + token + "x"},
		{"extra parts", "Bearer " + token + " extra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertUnauthenticated(t, f.do(tt.header))
		})
	}
}

func TestAuthenticate_LoggedOutTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)
	other := f.issue(t)

	require.NoError(t, f.tokens.Remove(context.Background(), f.user.ID, token))

	assertUnauthenticated(t, f.do("Bearer "+token))
	assert.Equal(t, http.StatusOK, f.do("Bearer "+other).Code)
}

func TestAuthenticate_RevokedTokenLogsWarning(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)
	require.NoError(t, f.tokens.Remove(context.Background(), f.user.ID, token))

	levelFor := func(header string) string {
		t.Helper()
		log, buf := logger.NewTestLogger()
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", header)
		req = req.WithContext(logger.WithLogger(req.Context(), log))
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)
		assertUnauthenticated(t, w)

		for _, entry := range buf.Entries() {
			if entry["msg"] == "API error response" {
				return entry["level"].(string)
			}
		}
		t.Fatalf("no error response logged for %q", header)
		return ""
	}

	assert.Equal(t, "WARN", levelFor("Bearer "+token))
	assert.Equal(t, "DEBUG", levelFor("Bearer not-a-jwt"))
}

func TestAuthenticate_SignedButNeverIssued(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.jwt.GenerateToken(context.Background(), f.user.ID)
	require.NoError(t, err)

	assertUnauthenticated(t, f.do("Bearer "+token))
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)
	require.NoError(t, f.users.Delete(context.Background(), f.user.ID))

	assertUnauthenticated(t, f.do("Bearer "+token))
}

func TestAuthenticate_TokenStoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t)
	f.tokens.ExistsErr = errors.New("connection refused")

	w := f.do("Bearer " + token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.jwt = &mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken}
	mw := middleware.NewAuthMiddleware(f.jwt, f.tokens, f.users, nil)
	f.handler = mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	assertUnauthenticated(t, f.do("Bearer anything"))
}
