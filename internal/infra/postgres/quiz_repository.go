package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizboard/internal/domain"
)

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Title     string          `bun:"title,notnull"`
	CreatedBy int64           `bun:"created_by,nullzero"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	Questions []questionModel `bun:"rel:has-many,join:id=quiz_id"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID            int64  `bun:"id,pk,autoincrement"`
	QuizID        int64  `bun:"quiz_id,notnull"`
	Text          string `bun:"text,notnull"`
	OptionA       string `bun:"option_a,notnull"`
	OptionB       string `bun:"option_b,notnull"`
	OptionC       string `bun:"option_c,notnull"`
	OptionD       string `bun:"option_d,notnull"`
	CorrectAnswer string `bun:"correct_answer,notnull"`
}

func (m questionModel) toDomain() domain.Question {
	return domain.Question{
		ID:            m.ID,
		QuizID:        m.QuizID,
		Text:          m.Text,
		OptionA:       m.OptionA,
		OptionB:       m.OptionB,
		OptionC:       m.OptionC,
		OptionD:       m.OptionD,
		CorrectAnswer: m.CorrectAnswer,
	}
}

// QuizRepository is the bun-backed quiz catalog.
type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	m := quizModel{Title: quiz.Title, CreatedBy: quiz.CreatedBy, CreatedAt: quiz.CreatedAt}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return domain.Quiz{ID: m.ID, Title: m.Title, CreatedBy: m.CreatedBy, CreatedAt: m.CreatedAt}, nil
}

func (r *QuizRepository) AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	m := questionModel{
		QuizID:        question.QuizID,
		Text:          question.Text,
		OptionA:       question.OptionA,
		OptionB:       question.OptionB,
		OptionC:       question.OptionC,
		OptionD:       question.OptionD,
		CorrectAnswer: question.CorrectAnswer,
	}
	if _, err := r.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
		if hasCode(err, foreignKeyViolation) {
			return domain.Question{}, domain.ErrQuizNotFound
		}
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return m.toDomain(), nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var m quizModel
	err := r.db.NewSelect().
		Model(&m).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("qn.id ASC")
		}).
		Where("q.id = ?", quizID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}

	quiz := domain.Quiz{
		ID:        m.ID,
		Title:     m.Title,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		Questions: make([]domain.Question, 0, len(m.Questions)),
	}
	for _, qm := range m.Questions {
		quiz.Questions = append(quiz.Questions, qm.toDomain())
	}
	return quiz, nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var rows []struct {
		ID            int64  `bun:"id"`
		Title         string `bun:"title"`
		QuestionCount int    `bun:"question_count"`
	}
	err := r.db.NewSelect().
		TableExpr("quizzes AS q").
		ColumnExpr("q.id, q.title").
		ColumnExpr("COUNT(qn.id) AS question_count").
		Join("LEFT JOIN questions AS qn ON qn.quiz_id = q.id").
		GroupExpr("q.id").
		OrderExpr("q.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizSummary{ID: row.ID, Title: row.Title, QuestionCount: row.QuestionCount})
	}
	return out, nil
}
