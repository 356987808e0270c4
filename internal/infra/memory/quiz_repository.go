package memory

import (
	"context"
	"sync"

	"quizboard/internal/domain"
)

// QuizRepository is an in-memory quiz catalog (useful for tests/demos).
type QuizRepository struct {
	mu             sync.RWMutex
	nextQuizID     int64
	nextQuestionID int64
	order          []int64
	quizzes        map[int64]*domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[int64]*domain.Quiz)}
}

func (r *QuizRepository) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextQuizID++
	quiz.ID = r.nextQuizID
	quiz.Questions = nil
	stored := quiz
	r.quizzes[quiz.ID] = &stored
	r.order = append(r.order, quiz.ID)
	return quiz, nil
}

func (r *QuizRepository) AddQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[question.QuizID]
	if !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	r.nextQuestionID++
	question.ID = r.nextQuestionID
	quiz.Questions = append(quiz.Questions, question)
	return question, nil
}

func (r *QuizRepository) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	out := *quiz
	out.Questions = append([]domain.Question(nil), quiz.Questions...)
	return out, nil
}

func (r *QuizRepository) ListQuizzes(_ context.Context) ([]domain.QuizSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.QuizSummary, 0, len(r.order))
	for _, id := range r.order {
		quiz := r.quizzes[id]
		out = append(out, domain.QuizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			QuestionCount: len(quiz.Questions),
		})
	}
	return out, nil
}

// Seed loads fixed quizzes, keeping their IDs. Used for demos and tests.
func (r *QuizRepository) Seed(quizzes ...domain.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, quiz := range quizzes {
		stored := quiz
		stored.Questions = append([]domain.Question(nil), quiz.Questions...)
		for i := range stored.Questions {
			stored.Questions[i].QuizID = quiz.ID
			if stored.Questions[i].ID > r.nextQuestionID {
				r.nextQuestionID = stored.Questions[i].ID
			}
		}
		if _, exists := r.quizzes[quiz.ID]; !exists {
			r.order = append(r.order, quiz.ID)
		}
		r.quizzes[quiz.ID] = &stored
		if quiz.ID > r.nextQuizID {
			r.nextQuizID = quiz.ID
		}
	}
}

// Title resolves a quiz id, for joining results in the ledger.
func (r *QuizRepository) Title(quizID int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return "", false
	}
	return quiz.Title, true
}
