package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/events"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// SignupInput carries the fields accepted when creating an account.
// A nil Age defaults to zero.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// UserUpdate carries the profile fields to change. Nil fields are left as they are.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService provides account, session and avatar operations.
type UserService interface {
	// Signup creates an account and its first session token.
	Signup(ctx context.Context, in SignupInput) (*domain.User, string, error)

	// Login checks credentials and opens a new session.
	// Returns ErrInvalidCredentials for an unknown e-mail or a wrong password.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Logout ends the session identified by token.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll ends every session of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// GetProfile returns the user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies upd and returns the updated user.
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd UserUpdate) (*domain.User, error)

	// DeleteAccount removes the user together with their tasks, tokens and avatar
	// and returns the removed user.
	DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SetAvatar validates, resizes and stores an uploaded image.
	SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error

	// GetAvatar returns the stored PNG avatar.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// RemoveAvatar clears the avatar. Removing a missing avatar is not an error.
	RemoveAvatar(ctx context.Context, userID uuid.UUID) error
}

// UserServiceDeps groups the collaborators of the user service.
type UserServiceDeps struct {
	DB       *sql.DB
	Users    store.UserStore
	Tokens   store.TokenStore
	Tasks    store.TaskStore
	Avatars  store.AvatarStore
	Hasher   auth.PasswordHasher
	JWT      auth.JWTService
	Images   *avatar.Processor
	Events   events.EventEmitter
	Logger   *slog.Logger
	TimeFunc func() time.Time
}

type userServiceImpl struct {
	db       *sql.DB
	users    store.UserStore
	tokens   store.TokenStore
	tasks    store.TaskStore
	avatars  store.AvatarStore
	hasher   auth.PasswordHasher
	jwt      auth.JWTService
	images   *avatar.Processor
	events   events.EventEmitter
	logger   *slog.Logger
	timeFunc func() time.Time
}

// NewUserService creates a UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	required := []struct {
		name string
		nil  bool
	}{
		{"DB", deps.DB == nil},
		{"Users", deps.Users == nil},
		{"Tokens", deps.Tokens == nil},
		{"Tasks", deps.Tasks == nil},
		{"Avatars", deps.Avatars == nil},
		{"Hasher", deps.Hasher == nil},
		{"JWT", deps.JWT == nil},
		{"Images", deps.Images == nil},
		{"Events", deps.Events == nil},
	}
	for _, r := range required {
		if r.nil {
			return nil, fmt.Errorf("user service: %s cannot be nil", r.name)
		}
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	timeFunc := deps.TimeFunc
	if timeFunc == nil {
		timeFunc = time.Now
	}

	return &userServiceImpl{
		db:       deps.DB,
		users:    deps.Users,
		tokens:   deps.Tokens,
		tasks:    deps.Tasks,
		avatars:  deps.Avatars,
		hasher:   deps.Hasher,
		jwt:      deps.JWT,
		images:   deps.Images,
		events:   deps.Events,
		logger:   log.With(slog.String("component", "user_service")),
		timeFunc: timeFunc,
	}, nil
}

// Signup creates the user and stores its first token in one transaction,
// then announces the new account.
func (s *userServiceImpl) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	age := 0
	if in.Age != nil {
		age = *in.Age
	}

	user, err := domain.NewUser(in.Name, in.Email, in.Password, age)
	if err != nil {
		log.Debug("signup rejected by validation", slog.String("error", err.Error()))
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, "", NewServiceError("user", "signup", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", NewServiceError("user", "signup", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.tokens.WithTx(tx).Add(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("signup with an e-mail that is already registered")
			return nil, "", err
		}
		log.Error("failed to store new user",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return nil, "", NewServiceError("user", "signup", err)
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	s.emit(ctx, events.TypeUserSignedUp, user)

	return user, token, nil
}

// Login implements UserService.
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown e-mail")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", NewServiceError("user", "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, strings.TrimSpace(password)); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", NewServiceError("user", "login", err)
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", NewServiceError("user", "login", err)
	}
	if err := s.tokens.Add(ctx, user.ID, token); err != nil {
		return nil, "", NewServiceError("user", "login", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Logout implements UserService.
func (s *userServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.tokens.Remove(ctx, userID, token); err != nil {
		return NewServiceError("user", "logout", err)
	}
	return nil
}

// LogoutAll implements UserService.
func (s *userServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.tokens.RemoveAll(ctx, userID)
	if err != nil {
		return NewServiceError("user", "logout_all", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("all sessions ended",
		slog.String("user_id", userID.String()),
		slog.Int64("tokens_removed", n))
	return nil
}

// GetProfile implements UserService.
func (s *userServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "get_profile", err)
	}
	return user, nil
}

// UpdateProfile reads the current user, applies upd and writes the complete
// user back within one transaction. A new password is validated and re-hashed.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, upd UserUpdate) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		user, err := txUsers.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			user.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Email != nil {
			user.Email = domain.NormalizeEmail(*upd.Email)
		}
		if upd.Age != nil {
			user.Age = *upd.Age
		}
		if upd.Password != nil {
			// Validate skips an empty Password, so a submitted one is checked here.
			if err := domain.ValidatePassword(*upd.Password); err != nil {
				return err
			}
			user.Password = strings.TrimSpace(*upd.Password)
		}

		if err := user.Validate(); err != nil {
			return err
		}

		if user.Password != "" {
			hashed, err := s.hasher.Hash(user.Password)
			if err != nil {
				return err
			}
			user.HashedPassword = hashed
			user.Password = ""
		}
		user.UpdatedAt = s.timeFunc().UTC()

		if err := txUsers.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrEmailExists):
			log.Debug("profile update rejected",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		case errors.Is(err, store.ErrUserNotFound):
			return nil, err
		}
		log.Error("failed to update profile",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("user", "update_profile", err)
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	return updated, nil
}

// DeleteAccount removes the user's tasks, tokens and the user row in one
// transaction. The avatar is removed afterwards on a best-effort basis, since
// the S3 backend cannot take part in the transaction.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}

		tasks, err := s.tasks.WithTx(tx).DeleteByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		if _, err := s.tokens.WithTx(tx).RemoveAll(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}
		if err := s.users.WithTx(tx).Delete(ctx, userID); err != nil {
			return err
		}

		log.Debug("account rows deleted",
			slog.String("user_id", userID.String()),
			slog.Int64("tasks_removed", tasks))
		deleted = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		log.Error("failed to delete account",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("user", "delete_account", err)
	}

	if err := s.avatars.Delete(ctx, userID); err != nil {
		log.Warn("failed to remove avatar of deleted account",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
	}

	log.Info("account deleted", slog.String("user_id", userID.String()))
	s.emit(ctx, events.TypeAccountCanceled, deleted)

	return deleted, nil
}

// SetAvatar implements UserService.
func (s *userServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error {
	img, err := s.images.Process(filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return NewServiceError("user", "set_avatar", err)
	}

	if err := s.avatars.Save(ctx, userID, img); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		return NewServiceError("user", "set_avatar", err)
	}
	return nil
}

// GetAvatar returns store.ErrUserNotFound for an unknown user and
// store.ErrAvatarNotFound when the user has none.
func (s *userServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	data, err := s.avatars.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("user", "get_avatar", err)
	}
	return data, nil
}

// RemoveAvatar implements UserService.
func (s *userServiceImpl) RemoveAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.avatars.Delete(ctx, userID); err != nil {
		return NewServiceError("user", "remove_avatar", err)
	}
	return nil
}

// emit publishes an account event. Failures are logged and never reach the caller.
func (s *userServiceImpl) emit(ctx context.Context, eventType string, user *domain.User) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, events.AccountPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		log.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}

	if err := s.events.EmitEvent(ctx, event); err != nil {
		log.Warn("event handlers failed",
			slog.String("error", redact.Error(err)),
			slog.String("event_type", eventType),
			slog.String("user_id", user.ID.String()))
	}
}
