package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizboard/internal/app"
	"quizboard/internal/config"
	"quizboard/internal/domain"
	"quizboard/internal/infra/memory"
	"quizboard/internal/infra/postgres"
	infraredis "quizboard/internal/infra/redis"
	"quizboard/internal/logging"
	transport "quizboard/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
}

// stores holds the repositories for the configured backends.
type stores struct {
	users    app.UserRepository
	sessions app.SessionRepository
	quizzes  app.QuizRepository
	results  app.ResultRepository
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores uses Postgres when a URL is configured and memory otherwise.
// Redis, when configured, holds sessions and caches quizzes.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{}

	if cfg.Postgres.URL != "" {
		db := postgres.NewDB(cfg.Postgres.URL)
		st.closers = append(st.closers, func() { _ = db.Close() })
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			st.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		st.users = postgres.NewUserStore(db)
		st.quizzes = postgres.NewQuizRepository(db)
		st.results = postgres.NewResultLedger(pool)
		st.sessions = memory.NewSessionStore()
	} else {
		logger.Warn("postgres not configured; data lives in memory only")
		users := memory.NewUserStore()
		quizzes := memory.NewQuizRepository()
		quizzes.Seed(demoQuiz())
		st.users = users
		st.quizzes = quizzes
		st.results = memory.NewResultStore(users, quizzes)
		st.sessions = memory.NewSessionStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st.closers = append(st.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			st.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st.sessions = infraredis.NewSessionStore(client)
		st.quizzes = infraredis.NewQuizRepository(client, st.quizzes, config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute), logger)
	}
	return st, nil
}

func newAuthService(cfg config.Config, st *stores) *app.AuthService {
	return app.NewAuthService(st.users, st.sessions, app.AuthOptions{
		BcryptCost:        cfg.Auth.BcryptCost,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		SessionTTL:        config.Duration(cfg.Session.TTL, app.DefaultSessionTTL),
	})
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	auth := newAuthService(cfg, st)
	quizzes := app.NewQuizService(st.quizzes, st.results, app.NewLeaderboardFeed(), app.QuizOptions{
		LeaderboardLimit: cfg.Quiz.LeaderboardLimit,
		Logger:           logger,
	})
	handler := transport.NewHandler(auth, quizzes, transport.Options{
		CookieName:    cfg.Session.CookieName,
		SecureCookies: cfg.Session.Secure,
		Logger:        logger,
	})

	// No write timeout: leaderboard sockets stay open.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting quizboard", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoQuiz gives a fresh in-memory instance something to play.
func demoQuiz() domain.Quiz {
	return domain.Quiz{
		ID:        1,
		Title:     "Warm-up",
		CreatedAt: time.Now(),
		Questions: []domain.Question{
			{ID: 1, Text: "What is 2 + 2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "22", CorrectAnswer: "4"},
			{ID: 2, Text: "Capital of France?", OptionA: "Paris", OptionB: "Lyon", OptionC: "Nice", OptionD: "Lille", CorrectAnswer: "Paris"},
		},
	}
}

