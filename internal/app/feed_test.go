package app

import (
	"testing"

	"quizboard/internal/domain"
)

func TestFeedDropsStaleSnapshots(t *testing.T) {
	feed := NewLeaderboardFeed()
	sub := feed.Subscribe(1)
	defer sub.Cancel()

	// Publish more than the buffer holds without reading.
	for i := 0; i < feedBuffer*2; i++ {
		feed.Publish(domain.Leaderboard{QuizID: 1, Entries: make([]domain.LeaderboardEntry, i)})
	}

	var last domain.Leaderboard
	for i := 0; i < feedBuffer; i++ {
		last = <-sub.C
	}
	if len(last.Entries) != feedBuffer*2-1 {
		t.Fatalf("expected newest snapshot last, got %d entries", len(last.Entries))
	}
}

func TestFeedPrimeDeliversInitialSnapshot(t *testing.T) {
	feed := NewLeaderboardFeed()
	sub := feed.Subscribe(3)
	defer sub.Cancel()

	sub.Prime(domain.Leaderboard{QuizID: 3, QuizTitle: "initial"})
	if lb := <-sub.C; lb.QuizTitle != "initial" {
		t.Fatalf("expected initial snapshot, got %+v", lb)
	}
	sub.Prime(domain.Leaderboard{QuizID: 3, QuizTitle: "again"})
	select {
	case lb := <-sub.C:
		t.Fatalf("second prime must be ignored, got %+v", lb)
	default:
	}
}

func TestFeedPrimeSkippedAfterPublish(t *testing.T) {
	feed := NewLeaderboardFeed()
	sub := feed.Subscribe(3)
	defer sub.Cancel()

	// A result published between registration and the initial read is newer.
	feed.Publish(domain.Leaderboard{QuizID: 3, Entries: make([]domain.LeaderboardEntry, 1)})
	sub.Prime(domain.Leaderboard{QuizID: 3})

	if lb := <-sub.C; len(lb.Entries) != 1 {
		t.Fatalf("expected published snapshot, got %+v", lb)
	}
	select {
	case lb := <-sub.C:
		t.Fatalf("stale initial snapshot delivered after publish: %+v", lb)
	default:
	}
}

func TestFeedCancelRemovesTopic(t *testing.T) {
	feed := NewLeaderboardFeed()
	sub := feed.Subscribe(7)
	if !feed.HasSubscribers(7) {
		t.Fatalf("expected subscriber registered")
	}

	feed.Publish(domain.Leaderboard{QuizID: 8})
	select {
	case lb := <-sub.C:
		t.Fatalf("received update for another quiz: %+v", lb)
	default:
	}

	sub.Cancel()
	sub.Cancel()
	if feed.HasSubscribers(7) {
		t.Fatalf("expected topic removed")
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("expected channel closed")
	}
	sub.Prime(domain.Leaderboard{QuizID: 7})
}
