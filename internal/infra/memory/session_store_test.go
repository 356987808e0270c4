package memory

import (
	"context"
	"errors"
	"testing"

	"quizboard/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Save(ctx, domain.Session{Token: "t1", UserID: 7, Username: "alice"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 7 || got.Username != "alice" {
		t.Fatalf("unexpected session %+v", got)
	}

	_ = store.Delete(ctx, "t1")
	if _, err := store.Get(ctx, "t1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}
