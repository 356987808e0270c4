package http

import (
	"net/http"
	"strconv"
	"strings"

	"quizboard/internal/app"
	"quizboard/internal/domain"
)

type registerForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
	Confirm  string `schema:"confirm"`
}

type loginForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
	Next     string `schema:"next"`
}

type quizForm struct {
	Title string `schema:"title"`
}

type questionForm struct {
	Text          string `schema:"text"`
	OptionA       string `schema:"option_a"`
	OptionB       string `schema:"option_b"`
	OptionC       string `schema:"option_c"`
	OptionD       string `schema:"option_d"`
	CorrectAnswer string `schema:"correct_answer"`
}

func (f questionForm) input() app.QuestionInput {
	return app.QuestionInput{
		Text:          f.Text,
		OptionA:       f.OptionA,
		OptionB:       f.OptionB,
		OptionC:       f.OptionC,
		OptionD:       f.OptionD,
		CorrectAnswer: f.CorrectAnswer,
	}
}

// decodeForm parses the POST body into dst.
func (h *Handler) decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return domain.NewValidationError("", "Malformed form submission")
	}
	if err := h.forms.Decode(dst, r.PostForm); err != nil {
		return domain.NewValidationError("", "Malformed form submission")
	}
	return nil
}

const answerPrefix = "answer_"

// submittedAnswers collects answer_{questionID} fields. Unanswered questions are absent.
func submittedAnswers(r *http.Request) map[int64]string {
	answers := make(map[int64]string)
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, answerPrefix) || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(key, answerPrefix), 10, 64)
		if err != nil {
			continue
		}
		answers[id] = values[0]
	}
	return answers
}
