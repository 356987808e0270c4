package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizboard/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr))
	ctx := context.Background()
	now := time.Now()
	session := domain.Session{Token: "abc", UserID: 3, Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("session:abc") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("session:abc"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected ttl within an hour, got %v", ttl)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 3 || got.Username != "alice" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("session:abc") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreExpiresWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr))
	ctx := context.Background()
	if err := store.Save(ctx, domain.Session{Token: "short", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session expired, got %v", err)
	}

	if err := store.Save(ctx, domain.Session{Token: "stale", ExpiresAt: time.Now().Add(-time.Second)}); err == nil {
		t.Fatalf("expected error saving an expired session")
	}
}
