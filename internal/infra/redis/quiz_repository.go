package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizboard/internal/app"
	"quizboard/internal/domain"
)

var errStaleFill = errors.New("quiz generation changed")

// getter is satisfied by both the client and a watched transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// QuizRepository caches quizzes in Redis and falls back to the wrapped catalog on a miss.
// Quizzes are stored as JSON: SET quiz:{quizID} {quiz}; quiz:{quizID}:gen counts edits.
type QuizRepository struct {
	client *redis.Client
	next   app.QuizRepository
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, next app.QuizRepository, ttl time.Duration, logger *slog.Logger) *QuizRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizRepository{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	return r.next.CreateQuiz(ctx, quiz)
}

// AddQuestion writes through, bumps the quiz generation and drops the cached copy.
// Fills that loaded the quiz under an older generation are discarded.
func (r *QuizRepository) AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	added, err := r.next.AddQuestion(ctx, question)
	if err != nil {
		return domain.Question{}, err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.genKey(question.QuizID))
		pipe.Del(ctx, r.key(question.QuizID))
		return nil
	})
	if err != nil {
		r.logger.Warn("quiz cache invalidation failed", "quiz_id", question.QuizID, "error", err)
	}
	r.sf.Forget(r.key(question.QuizID))
	return added, nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return r.next.ListQuizzes(ctx)
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(r.key(quizID), func() (interface{}, error) {
		// Shared by every waiter; one caller going away must not fail the rest.
		ctx := context.WithoutCancel(ctx)

		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		gen, genErr := r.generation(ctx, r.client, quizID)
		quiz, err := r.next.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if genErr != nil {
			r.logger.Warn("quiz cache generation read failed", "quiz_id", quizID, "error", genErr)
			return quiz, nil
		}
		r.fill(ctx, quiz, gen)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// fill caches quiz only if its generation is still gen when the write commits.
func (r *QuizRepository) fill(ctx context.Context, quiz domain.Quiz, gen int64) {
	data, err := json.Marshal(quiz)
	if err != nil {
		r.logger.Warn("quiz cache encode failed", "quiz_id", quiz.ID, "error", err)
		return
	}
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.generation(ctx, tx, quiz.ID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key(quiz.ID), data, r.ttlWithJitter())
			return nil
		})
		return err
	}, r.genKey(quiz.ID))
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("quiz changed while loading, not cached", "quiz_id", quiz.ID)
	default:
		r.logger.Warn("quiz cache fill failed", "quiz_id", quiz.ID, "error", err)
	}
}

func (r *QuizRepository) generation(ctx context.Context, c getter, quizID int64) (int64, error) {
	gen, err := c.Get(ctx, r.genKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *QuizRepository) cached(ctx context.Context, quizID int64) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("quiz cache read failed", "quiz_id", quizID, "error", err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10)
}

func (r *QuizRepository) genKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":gen"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
