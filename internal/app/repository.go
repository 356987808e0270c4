package app

import (
	"context"

	"quizboard/internal/domain"
)

// UserRepository stores accounts. Create returns domain.ErrDuplicateUsername for a taken name.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

// SessionRepository abstracts where login sessions live (in-memory, Redis).
type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// QuizRepository is the quiz catalog. GetQuiz returns questions in insertion order.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}

// ResultRepository is the append-only result ledger.
type ResultRepository interface {
	Record(ctx context.Context, result domain.Result) (domain.Result, error)
	History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	// Leaderboard orders by score descending, earlier results first on ties.
	Leaderboard(ctx context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error)
}
