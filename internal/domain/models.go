package domain

import "time"

// User is a registered account. PasswordHash is a bcrypt digest, never the plaintext.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Authenticated reports whether the principal belongs to a logged-in user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// Session ties an opaque token to a user until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Principal returns the caller identity carried by the session.
func (s Session) Principal() Principal {
	return Principal{UserID: s.UserID, Username: s.Username}
}

// Question models an MCQ question with four options and a free-text correct answer.
type Question struct {
	ID            int64  `json:"id"`
	QuizID        int64  `json:"quizId"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Options returns the four choices in display order.
func (q Question) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// Quiz is a titled collection of questions.
type Quiz struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedBy int64      `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions"`
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
}

// Score is the outcome of grading one submission.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Result is an immutable record of one user's score on one quiz.
type Result struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	QuizID    int64     `json:"quizId"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryEntry is a result joined with its quiz title.
type HistoryEntry struct {
	ResultID  int64     `json:"resultId"`
	QuizID    int64     `json:"quizId"`
	QuizTitle string    `json:"quizTitle"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry is a result joined with the username that earned it.
type LeaderboardEntry struct {
	ResultID  int64     `json:"resultId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Leaderboard captures the ordered top results for a quiz.
type Leaderboard struct {
	QuizID    int64              `json:"quizId"`
	QuizTitle string             `json:"quizTitle"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
