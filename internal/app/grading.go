package app

import (
	"strings"

	"quizboard/internal/domain"
)

// Grade counts submitted answers that match each question's correct answer,
// ignoring case and surrounding whitespace. Unanswered questions count as wrong.
func Grade(questions []domain.Question, submitted map[int64]string) domain.Score {
	score := domain.Score{Total: len(questions)}
	for _, q := range questions {
		answer, ok := submitted[q.ID]
		if !ok {
			continue
		}
		if normalizeAnswer(answer) == normalizeAnswer(q.CorrectAnswer) {
			score.Correct++
		}
	}
	return score
}

func normalizeAnswer(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
