package http

import (
	"errors"
	"fmt"
	"net/http"

	"quizboard/internal/domain"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home", page{Title: "Quizzes", Data: quizzes})
}

func (h *Handler) createQuizForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "create_quiz", page{Title: "Create quiz"})
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var form quizForm
	err := h.decodeForm(r, &form)
	var quiz domain.Quiz
	if err == nil {
		quiz, err = h.quizzes.CreateQuiz(r.Context(), principalFrom(r.Context()), form.Title)
	}
	if err != nil {
		msg, ok := formMessage(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, "create_quiz", page{
			Title: "Create quiz", Form: form, Flashes: []flash{failure(msg)},
		})
		return
	}

	h.setFlash(w, success("Quiz created. Add some questions."))
	http.Redirect(w, r, fmt.Sprintf("/add_question/%d", quiz.ID), http.StatusSeeOther)
}

func (h *Handler) addQuestionForm(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "add_question", page{
		Title: "Add question to " + quiz.Title, Form: questionForm{}, Data: quiz,
	})
}

func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	var form questionForm
	err := h.decodeForm(r, &form)
	if err == nil {
		_, err = h.quizzes.AddQuestion(r.Context(), principalFrom(r.Context()), quiz.ID, form.input())
	}
	if err != nil {
		msg, ok := formMessage(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, "add_question", page{
			Title: "Add question to " + quiz.Title, Form: form, Data: quiz, Flashes: []flash{failure(msg)},
		})
		return
	}

	h.setFlash(w, success("Question added."))
	http.Redirect(w, r, fmt.Sprintf("/add_question/%d", quiz.ID), http.StatusSeeOther)
}

func (h *Handler) takeQuizForm(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "take_quiz", page{Title: quiz.Title, Data: quiz})
}

func (h *Handler) takeQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDParam(r)
	if !ok {
		h.fail(w, r, domain.ErrQuizNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.setFlash(w, failure("Malformed form submission"))
		http.Redirect(w, r, fmt.Sprintf("/take_quiz/%d", quizID), http.StatusSeeOther)
		return
	}

	result, err := h.quizzes.Submit(r.Context(), principalFrom(r.Context()), quizID, submittedAnswers(r))
	if errors.Is(err, domain.ErrQuizEmpty) {
		h.setFlash(w, info("This quiz has no questions yet."))
		http.Redirect(w, r, fmt.Sprintf("/take_quiz/%d", quizID), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setFlash(w, success(fmt.Sprintf("You scored %d out of %d", result.Score, result.Total)))
	http.Redirect(w, r, "/my_results", http.StatusSeeOther)
}

func (h *Handler) myResults(w http.ResponseWriter, r *http.Request) {
	history, err := h.quizzes.History(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "my_results", page{Title: "My results", Data: history})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDParam(r)
	if !ok {
		h.fail(w, r, domain.ErrQuizNotFound)
		return
	}
	lb, err := h.quizzes.Leaderboard(r.Context(), quizID, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "leaderboard", page{Title: "Leaderboard: " + lb.QuizTitle, Data: lb})
}

func (h *Handler) loadQuiz(w http.ResponseWriter, r *http.Request) (domain.Quiz, bool) {
	quizID, ok := quizIDParam(r)
	if !ok {
		h.fail(w, r, domain.ErrQuizNotFound)
		return domain.Quiz{}, false
	}
	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.fail(w, r, err)
		return domain.Quiz{}, false
	}
	return quiz, true
}
