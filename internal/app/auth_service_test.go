package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizboard/internal/app"
	"quizboard/internal/domain"
	"quizboard/internal/infra/memory"
)

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	auth := newTestAuth(users, memory.NewSessionStore(), time.Now)

	if _, err := auth.Register(ctx, app.RegisterInput{Username: "alice", Password: "secret1", Confirm: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := auth.Register(ctx, app.RegisterInput{Username: "alice", Password: "other1", Confirm: "other1"})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	// The first account keeps its password.
	if _, err := auth.Login(ctx, app.LoginInput{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("login with original password: %v", err)
	}
	if _, err := auth.Login(ctx, app.LoginInput{Username: "alice", Password: "other1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected second password rejected, got %v", err)
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	auth := newTestAuth(users, memory.NewSessionStore(), time.Now)

	if _, err := auth.Register(ctx, app.RegisterInput{Username: "  bob ", Password: "hunter22", Confirm: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	stored, err := users.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("expected trimmed username stored: %v", err)
	}
	if stored.PasswordHash == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(memory.NewUserStore(), memory.NewSessionStore(), time.Now)

	cases := []struct {
		name  string
		in    app.RegisterInput
		field string
	}{
		{"missing username", app.RegisterInput{Password: "secret1", Confirm: "secret1"}, "username"},
		{"short username", app.RegisterInput{Username: "al", Password: "secret1", Confirm: "secret1"}, "username"},
		{"short password", app.RegisterInput{Username: "alice", Password: "abc", Confirm: "abc"}, "password"},
		{"mismatched confirm", app.RegisterInput{Username: "alice", Password: "secret1", Confirm: "secret2"}, "confirm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestLoginResolveLogout(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(memory.NewUserStore(), memory.NewSessionStore(), time.Now)

	user, err := auth.Register(ctx, app.RegisterInput{Username: "carol", Password: "secret1", Confirm: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := auth.Login(ctx, app.LoginInput{Username: "nobody", Password: "secret1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	session, err := auth.Login(ctx, app.LoginInput{Username: "carol", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected a session token")
	}

	p, err := auth.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.UserID != user.ID || p.Username != "carol" {
		t.Fatalf("unexpected principal %+v", p)
	}

	if err := auth.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Resolve(ctx, session.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
	if _, err := auth.Resolve(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
}

func TestResolveRejectsExpiredSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	sessions := memory.NewSessionStore()
	auth := newTestAuth(memory.NewUserStore(), sessions, clock)

	if _, err := auth.Register(ctx, app.RegisterInput{Username: "dave", Password: "secret1", Confirm: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := auth.Login(ctx, app.LoginInput{Username: "dave", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := auth.Resolve(ctx, session.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired session rejected, got %v", err)
	}
	if _, err := sessions.Get(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session purged, got %v", err)
	}
}

func newTestAuth(users app.UserRepository, sessions app.SessionRepository, now func() time.Time) *app.AuthService {
	return app.NewAuthServiceWithClock(users, sessions, app.AuthOptions{
		BcryptCost: bcrypt.MinCost,
		SessionTTL: time.Hour,
	}, now)
}
