package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quizboard/internal/domain"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// QuestionInput is the add-question form.
type QuestionInput struct {
	Text          string `json:"text" validate:"required,max=500"`
	OptionA       string `json:"option_a" validate:"required,max=150"`
	OptionB       string `json:"option_b" validate:"required,max=150"`
	OptionC       string `json:"option_c" validate:"required,max=150"`
	OptionD       string `json:"option_d" validate:"required,max=150"`
	CorrectAnswer string `json:"correct_answer" validate:"required,max=150"`
}

type quizInput struct {
	Title string `json:"title" validate:"required,max=150"`
}

// QuizOptions configures QuizService. Zero values pick defaults.
type QuizOptions struct {
	LeaderboardLimit int
	Logger           *slog.Logger
	Now              func() time.Time
}

// QuizService contains the catalog, grading and result use cases.
type QuizService struct {
	quizzes QuizRepository
	results ResultRepository
	feed    *LeaderboardFeed
	limit   int
	logger  *slog.Logger
	now     func() time.Time
}

func NewQuizService(quizzes QuizRepository, results ResultRepository, feed *LeaderboardFeed, opts QuizOptions) *QuizService {
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if feed == nil {
		feed = NewLeaderboardFeed()
	}
	return &QuizService{
		quizzes: quizzes,
		results: results,
		feed:    feed,
		limit:   opts.LeaderboardLimit,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// CreateQuiz creates an empty quiz owned by the caller.
func (s *QuizService) CreateQuiz(ctx context.Context, p domain.Principal, title string) (domain.Quiz, error) {
	if !p.Authenticated() {
		return domain.Quiz{}, domain.ErrUnauthorized
	}
	in := quizInput{Title: strings.TrimSpace(title)}
	if err := validateInput(in); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.quizzes.CreateQuiz(ctx, domain.Quiz{
		Title:     in.Title,
		CreatedBy: p.UserID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// AddQuestion appends a question to an existing quiz. The correct answer is
// stored as typed; it is not checked against the options.
func (s *QuizService) AddQuestion(ctx context.Context, p domain.Principal, quizID int64, in QuestionInput) (domain.Question, error) {
	if !p.Authenticated() {
		return domain.Question{}, domain.ErrUnauthorized
	}
	in = trimQuestion(in)
	if err := validateInput(in); err != nil {
		return domain.Question{}, err
	}
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Question{}, err
	}
	question, err := s.quizzes.AddQuestion(ctx, domain.Question{
		QuizID:        quizID,
		Text:          in.Text,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: in.CorrectAnswer,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	return question, nil
}

// GetQuiz returns a quiz with its questions or domain.ErrQuizNotFound.
func (s *QuizService) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListQuizzes returns every quiz in creation order.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// Submit grades answers (question id -> answer text), records the result and
// pushes the refreshed leaderboard to live subscribers.
func (s *QuizService) Submit(ctx context.Context, p domain.Principal, quizID int64, answers map[int64]string) (domain.Result, error) {
	if !p.Authenticated() {
		return domain.Result{}, domain.ErrUnauthorized
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.Result{}, domain.ErrQuizEmpty
	}

	score := Grade(quiz.Questions, answers)
	result, err := s.results.Record(ctx, domain.Result{
		UserID:    p.UserID,
		QuizID:    quiz.ID,
		Score:     score.Correct,
		Total:     score.Total,
		CreatedAt: s.now(),
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("record result: %w", err)
	}

	if s.feed.HasSubscribers(quiz.ID) {
		lb, err := s.leaderboard(ctx, quiz, s.limit)
		if err != nil {
			s.logger.Warn("leaderboard refresh failed", "quiz_id", quiz.ID, "error", err)
		} else {
			s.feed.Publish(lb)
		}
	}
	return result, nil
}

// History lists the caller's results with quiz titles in the order they were recorded.
func (s *QuizService) History(ctx context.Context, p domain.Principal) ([]domain.HistoryEntry, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	entries, err := s.results.History(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// Leaderboard returns the top results for a quiz. A non-positive limit uses the configured default.
func (s *QuizService) Leaderboard(ctx context.Context, quizID int64, limit int) (domain.Leaderboard, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return s.leaderboard(ctx, quiz, limit)
}

// Subscribe streams leaderboard snapshots for a quiz, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID int64) (<-chan domain.Leaderboard, func(), error) {
	// Register before reading so results recorded meanwhile are still published.
	sub := s.feed.Subscribe(quizID)
	lb, err := s.Leaderboard(ctx, quizID, s.limit)
	if err != nil {
		sub.Cancel()
		return nil, nil, err
	}
	sub.Prime(lb)
	return sub.C, sub.Cancel, nil
}

func (s *QuizService) leaderboard(ctx context.Context, quiz domain.Quiz, limit int) (domain.Leaderboard, error) {
	entries, err := s.results.Leaderboard(ctx, quiz.ID, s.clampLimit(limit))
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}
	return domain.Leaderboard{
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

func (s *QuizService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// trimQuestion leaves CorrectAnswer untouched; grading normalizes it.
func trimQuestion(in QuestionInput) QuestionInput {
	in.Text = strings.TrimSpace(in.Text)
	in.OptionA = strings.TrimSpace(in.OptionA)
	in.OptionB = strings.TrimSpace(in.OptionB)
	in.OptionC = strings.TrimSpace(in.OptionC)
	in.OptionD = strings.TrimSpace(in.OptionD)
	return in
}
