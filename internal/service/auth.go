package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/auth"
	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// SignupInput carries the signup form fields.
type SignupInput struct {
	Username string `validate:"required,max=150"`
	Email    string `validate:"required,email,max=150"`
	Password string `validate:"min=8,max=1024"`
}

// AuthService registers users and manages their server-side sessions.
type AuthService struct {
	users    repo.UserRepo
	sessions repo.SessionRepo
	ttl      time.Duration
	log      *slog.Logger
	validate *validator.Validate

	// now is swapped in tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService. Sessions it creates live for ttl.
func NewAuthService(users repo.UserRepo, sessions repo.SessionRepo, ttl time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Signup validates the form, rejects a taken username or email, and stores a
// new user with an argon2id password hash.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return domain.User{}, validationError(err, signupMessage)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}
	if exists {
		return domain.User{}, fmt.Errorf("%w: Email or username already exists", domain.ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, fmt.Errorf("%w: Email or username already exists", domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}
	return user, nil
}

func signupMessage(fe validator.FieldError) string {
	switch {
	case fe.Field() == "Password" && fe.Tag() == "min":
		return fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength)
	case fe.Field() == "Password":
		return "Password is too long"
	case fe.Tag() == "required":
		return "Username and email are required"
	case fe.Tag() == "email":
		return "Please enter a valid email address"
	default:
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
}

// Login checks the credentials and opens a new session for the user.
// An unknown email and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.log.WarnContext(ctx, "pruning expired sessions failed", "error", err)
	} else if n > 0 {
		s.log.DebugContext(ctx, "pruned expired sessions", "count", n)
	}

	sess, err := s.sessions.Create(ctx, domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return sess, nil
}

// Logout ends the session. Ending a session that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("service.AuthService.Logout: %w", err)
	}
	return nil
}

// Authenticate resolves a session id to its user.
// Unknown or expired sessions, and sessions whose user is gone, yield
// domain.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, sessionID uuid.UUID) (domain.User, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthenticated
		}
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			s.log.WarnContext(ctx, "deleting expired session failed", "error", err)
		}
		return domain.User{}, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthenticated
		}
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	return user, nil
}
