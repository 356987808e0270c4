package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizboard/internal/domain"
)

const (
	DefaultMinPasswordLength = 6
	DefaultSessionTTL        = 24 * time.Hour
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,max=72"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthOptions tunes hashing and session lifetime. Zero values pick defaults.
type AuthOptions struct {
	BcryptCost        int
	MinPasswordLength int
	SessionTTL        time.Duration
}

// AuthService is the credential store plus the session/access layer.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	opts     AuthOptions
	now      func() time.Time
}

func NewAuthService(users UserRepository, sessions SessionRepository, opts AuthOptions) *AuthService {
	return NewAuthServiceWithClock(users, sessions, opts, time.Now)
}

// NewAuthServiceWithClock is used by tests that need to move time forward.
func NewAuthServiceWithClock(users UserRepository, sessions SessionRepository, opts AuthOptions, now func() time.Time) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &AuthService{users: users, sessions: sessions, opts: opts, now: now}
}

// Register creates an account with a bcrypt hash of the password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	if utf8.RuneCountInString(in.Password) < s.opts.MinPasswordLength {
		return domain.User{}, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", s.opts.MinPasswordLength))
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return domain.User{}, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.User{}, domain.NewValidationError("password", "is too long")
		}
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return domain.Session{}, err
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve maps a session token to its principal, or domain.ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Principal{}, domain.ErrUnauthorized
		}
		return domain.Principal{}, fmt.Errorf("load session: %w", err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return session.Principal(), nil
}

// SessionTTL is the lifetime given to new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.opts.SessionTTL
}
