package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input. Use ValidationError for details.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUsername is returned when registering a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a gated operation runs without a logged-in user.
	ErrUnauthorized = errors.New("login required")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEmpty is returned when submitting answers to a quiz without questions.
	ErrQuizEmpty = errors.New("quiz has no questions")
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound indicates the session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError describes the first invalid field of a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
