package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"quizboard/internal/app"
	"quizboard/internal/domain"
	"quizboard/internal/infra/postgres"
	infraredis "quizboard/internal/infra/redis"
)

func TestQuizLifecycleOnPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.NewDB(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := app.NewAuthService(postgres.NewUserStore(db), infraredis.NewSessionStore(redisClient), app.AuthOptions{BcryptCost: bcrypt.MinCost})
	quizRepo := infraredis.NewQuizRepository(redisClient, postgres.NewQuizRepository(db), 5*time.Minute, logger)
	service := app.NewQuizService(quizRepo, postgres.NewResultLedger(pool), app.NewLeaderboardFeed(), app.QuizOptions{Logger: logger})

	alice := login(t, ctx, auth, "alice")
	bob := login(t, ctx, auth, "bob")

	if _, err := auth.Register(ctx, app.RegisterInput{Username: "alice", Password: "secret1", Confirm: "secret1"}); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	quiz, err := service.CreateQuiz(ctx, alice, "Capitals")
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	q, err := service.AddQuestion(ctx, alice, quiz.ID, app.QuestionInput{
		Text: "Capital of France?", OptionA: "Paris", OptionB: "Lyon", OptionC: "Nice", OptionD: "Lille", CorrectAnswer: "Paris",
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := service.AddQuestion(ctx, alice, 9999, app.QuestionInput{
		Text: "x", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "a",
	}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}

	if _, err := service.Submit(ctx, bob, quiz.ID, map[int64]string{}); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	if _, err := service.Submit(ctx, alice, quiz.ID, map[int64]string{q.ID: " paris "}); err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if _, err := service.Submit(ctx, bob, quiz.ID, map[int64]string{q.ID: "PARIS"}); err != nil {
		t.Fatalf("submit bob again: %v", err)
	}

	lb, err := service.Leaderboard(ctx, quiz.ID, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", lb.Entries)
	}
	// Equal scores keep submission order.
	if lb.Entries[0].Username != "alice" || lb.Entries[1].Username != "bob" || lb.Entries[2].Score != 0 {
		t.Fatalf("unexpected ordering: %+v", lb.Entries)
	}

	history, err := service.History(ctx, bob)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].QuizTitle != "Capitals" || history[0].Score != 0 || history[1].Score != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}

	summaries, err := service.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(summaries) != 1 || summaries[0].QuestionCount != 1 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func login(t *testing.T, ctx context.Context, auth *app.AuthService, username string) domain.Principal {
	t.Helper()
	if _, err := auth.Register(ctx, app.RegisterInput{Username: username, Password: "secret1", Confirm: "secret1"}); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	session, err := auth.Login(ctx, app.LoginInput{Username: username, Password: "secret1"})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	p, err := auth.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("resolve %s: %v", username, err)
	}
	return p
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
