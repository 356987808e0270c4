package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizboard/internal/domain"
)

// ResultLedger appends results and serves history and leaderboard reads over pgx.
type ResultLedger struct {
	pool *pgxpool.Pool
}

func NewResultLedger(pool *pgxpool.Pool) *ResultLedger {
	return &ResultLedger{pool: pool}
}

func (l *ResultLedger) Record(ctx context.Context, result domain.Result) (domain.Result, error) {
	err := l.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, quiz_id, score, total, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		result.UserID, result.QuizID, result.Score, result.Total, result.CreatedAt,
	).Scan(&result.ID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("insert result: %w", err)
	}
	return result, nil
}

func (l *ResultLedger) History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT r.id, r.quiz_id, q.title, r.score, r.total, r.created_at
		FROM results r
		JOIN quizzes q ON q.id = r.quiz_id
		WHERE r.user_id = $1
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ResultID, &e.QuizID, &e.QuizTitle, &e.Score, &e.Total, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *ResultLedger) Leaderboard(ctx context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT r.id, r.user_id, u.username, r.score, r.total, r.created_at
		FROM results r
		JOIN users u ON u.id = r.user_id
		WHERE r.quiz_id = $1
		ORDER BY r.score DESC, r.id ASC
		LIMIT $2`, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ResultID, &e.UserID, &e.Username, &e.Score, &e.Total, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
