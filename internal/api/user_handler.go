package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// AvatarFormField is the multipart field carrying the uploaded image.
const AvatarFormField = "avatar"

// multipartOverhead is allowed on top of the image size for headers and boundaries.
const multipartOverhead = 64 << 10

// UserHandler handles account, session and avatar requests.
type UserHandler struct {
	users          service.UserService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler. Uploads larger than maxUploadBytes
// are rejected.
func NewUserHandler(users service.UserService, maxUploadBytes int64, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = avatar.DefaultMaxBytes
	}
	return &UserHandler{
		users:          users,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "user_handler")),
	}
}

// Signup handles POST /users.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		respondValidation(w, r, err)
		return
	}

	user, token, err := h.users.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login. Every failure caused by the credentials
// answers 400 "Unable to login".
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgUnableToLogin, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout by ending only the presented token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, _ := shared.TokenFromContext(r.Context())

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me, re-reading the authenticated user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(profile))
}

// UpdateMe handles PATCH /users/me. Keys outside name, email, password and
// age reject the whole request before anything is written.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	keys, err := shared.DecodePatch(r, &req)
	if checkErr := service.CheckAllowedFields(keys, service.UserUpdateFields); checkErr != nil {
		HandleAPIError(w, r, checkErr)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, service.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(updated))
}

// DeleteMe handles DELETE /users/me and returns the removed user.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(deleted))
}

// UploadAvatar handles POST /users/me/avatar with a multipart "avatar" file.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, avatar.ErrImageTooLarge)
			return
		}
		HandleAPIError(w, r, errors.Join(avatar.ErrUnsupportedImage, err))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, header.Filename, data); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("avatar uploaded",
		slog.String("user_id", user.ID.String()),
		slog.Int("bytes", len(data)))
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.users.RemoveAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles the public GET /users/{id}/avatar.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, store.ErrUserNotFound)
		return
	}

	data, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Debug("failed to write avatar", slog.String("error", err.Error()))
	}
}
