package memory

import (
	"context"
	"errors"
	"testing"

	"quizboard/internal/domain"
)

func TestUserStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	first, err := store.Create(ctx, domain.User{Username: "alice", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, domain.User{Username: "alice", PasswordHash: "h2"}); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	got, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != first.ID || got.PasswordHash != "h1" {
		t.Fatalf("original account changed: %+v", got)
	}
	if name, ok := store.Username(first.ID); !ok || name != "alice" {
		t.Fatalf("expected username lookup, got %q %v", name, ok)
	}
	if _, err := store.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
