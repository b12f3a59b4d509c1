// Package middleware provides HTTP middleware for authentication and request tracing.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// UnauthenticatedMessage is the only message a rejected request ever sees.
const UnauthenticatedMessage = "Please authenticate."

var errMissingBearer = errors.New("missing or malformed bearer token")

// AuthMiddleware authenticates requests by bearer token. A token must verify
// cryptographically and still be in its user's active token list.
type AuthMiddleware struct {
	jwtService auth.JWTService
	tokens     store.TokenStore
	users      store.UserStore
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// If logger is nil, a default logger will be used.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	tokens store.TokenStore,
	users store.UserStore,
	logger *slog.Logger,
) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		tokens:     tokens,
		users:      users,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate resolves the bearer token to a user and stores the user, its ID
// and the token in the request context. Any failure answers 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContextOrDefault(ctx, m.logger)

		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, errMissingBearer)
			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		active, err := m.tokens.Exists(ctx, claims.UserID, token)
		if err != nil {
			log.Error("failed to check token list", slog.String("user_id", claims.UserID.String()))
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred", err)
			return
		}
		if !active {
			// A signed token missing from the list was revoked or replayed.
			m.reject(w, r, auth.ErrInvalidToken, shared.WithElevatedLogLevel())
			return
		}

		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				m.reject(w, r, err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithAuth(ctx, user, token)))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error, opts ...shared.ResponseOption) {
	shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, UnauthenticatedMessage, err, opts...)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
