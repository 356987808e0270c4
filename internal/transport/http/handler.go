package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"

	"quizboard/internal/app"
	"quizboard/internal/domain"
)

// Options configures cookies and logging for the handler.
type Options struct {
	CookieName    string
	SecureCookies bool
	Logger        *slog.Logger
}

// Handler is the application context shared by every route.
type Handler struct {
	auth       *app.AuthService
	quizzes    *app.QuizService
	views      views
	forms      *schema.Decoder
	upgrader   websocket.Upgrader
	cookieName string
	secure     bool
	logger     *slog.Logger
}

func NewHandler(auth *app.AuthService, quizzes *app.QuizService, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "quizboard_session"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	forms := schema.NewDecoder()
	forms.IgnoreUnknownKeys(true)
	return &Handler{
		auth:    auth,
		quizzes: quizzes,
		views:   parseViews(),
		forms:   forms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		cookieName: opts.CookieName,
		secure:     opts.SecureCookies,
		logger:     opts.Logger,
	}
}

// Routes wires every endpoint onto a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(h.loadPrincipal)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", h.home)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)
	r.Get("/leaderboard/{quizID}", h.leaderboard)
	r.Get("/ws/leaderboard/{quizID}", h.ServeLeaderboardWS)

	r.Group(func(r chi.Router) {
		r.Use(h.requireLogin)
		r.Get("/create_quiz", h.createQuizForm)
		r.Post("/create_quiz", h.createQuiz)
		r.Get("/add_question/{quizID}", h.addQuestionForm)
		r.Post("/add_question/{quizID}", h.addQuestion)
		r.Get("/take_quiz/{quizID}", h.takeQuizForm)
		r.Post("/take_quiz/{quizID}", h.takeQuiz)
		r.Get("/my_results", h.myResults)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.AllowAll().Handler)
		r.Get("/quizzes", h.apiListQuizzes)
		r.Get("/quizzes/{quizID}/leaderboard", h.apiLeaderboard)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusNotFound, "error", page{Title: "Not found", Data: "Page not found"})
	})
	return r
}

func quizIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fail renders errors that are not tied to a form.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		h.render(w, r, http.StatusNotFound, "error", page{Title: "Not found", Data: "Quiz not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		h.redirectToLogin(w, r)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		h.render(w, r, http.StatusInternalServerError, "error", page{Title: "Error", Data: "Something went wrong. Please try again."})
	}
}

// formMessage turns a recoverable error into text for the originating form.
func formMessage(err error) (string, bool) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Field == "" {
			return verr.Message, true
		}
		return fieldLabel(verr.Field) + " " + verr.Message, true
	case errors.Is(err, domain.ErrValidation):
		return "Please check the form and try again", true
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "Username already exists", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials", true
	}
	return "", false
}

var fieldLabels = map[string]string{
	"username":       "Username",
	"password":       "Password",
	"confirm":        "Password confirmation",
	"title":          "Title",
	"text":           "Question text",
	"option_a":       "Option A",
	"option_b":       "Option B",
	"option_c":       "Option C",
	"option_d":       "Option D",
	"correct_answer": "Correct answer",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}
