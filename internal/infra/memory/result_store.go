package memory

import (
	"context"
	"sort"
	"sync"

	"quizboard/internal/domain"
)

// UsernameLookup resolves user ids for leaderboard rows.
type UsernameLookup interface {
	Username(userID int64) (string, bool)
}

// TitleLookup resolves quiz ids for history rows.
type TitleLookup interface {
	Title(quizID int64) (string, bool)
}

// ResultStore is an append-only in-memory ledger.
type ResultStore struct {
	users   UsernameLookup
	quizzes TitleLookup

	mu      sync.RWMutex
	nextID  int64
	results []domain.Result
}

func NewResultStore(users UsernameLookup, quizzes TitleLookup) *ResultStore {
	return &ResultStore{users: users, quizzes: quizzes}
}

func (s *ResultStore) Record(_ context.Context, result domain.Result) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	result.ID = s.nextID
	s.results = append(s.results, result)
	return result, nil
}

func (s *ResultStore) History(_ context.Context, userID int64) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.HistoryEntry, 0)
	for _, r := range s.results {
		if r.UserID != userID {
			continue
		}
		title, _ := s.quizzes.Title(r.QuizID)
		entries = append(entries, domain.HistoryEntry{
			ResultID:  r.ID,
			QuizID:    r.QuizID,
			QuizTitle: title,
			Score:     r.Score,
			Total:     r.Total,
			CreatedAt: r.CreatedAt,
		})
	}
	return entries, nil
}

func (s *ResultStore) Leaderboard(_ context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0)
	for _, r := range s.results {
		if r.QuizID != quizID {
			continue
		}
		name, _ := s.users.Username(r.UserID)
		entries = append(entries, domain.LeaderboardEntry{
			ResultID:  r.ID,
			UserID:    r.UserID,
			Username:  name,
			Score:     r.Score,
			Total:     r.Total,
			CreatedAt: r.CreatedAt,
		})
	}
	s.mu.RUnlock()

	// Stable keeps insertion order among equal scores.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
