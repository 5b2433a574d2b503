package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates an unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptTerminal is returned when a transition is requested on a
	// finished attempt. Retries should check status first.
	ErrAttemptTerminal = errors.New("attempt already terminal")
	// ErrUnknownQuestion indicates a question index outside the quiz.
	ErrUnknownQuestion = errors.New("unknown question index")
)

// ValidationError describes why a quiz definition is malformed.
// QuestionIndex is -1 for quiz-level problems (e.g. no questions at all).
type ValidationError struct {
	QuestionIndex int
	Reason        string
}

func (e *ValidationError) Error() string {
	if e.QuestionIndex < 0 {
		return "invalid quiz: " + e.Reason
	}
	return fmt.Sprintf("invalid question %d: %s", e.QuestionIndex, e.Reason)
}

// AttemptNotAllowedError is returned when the max-attempts limit is reached.
type AttemptNotAllowedError struct {
	QuizID      string
	MaxAttempts int
}

func (e *AttemptNotAllowedError) Error() string {
	return fmt.Sprintf("no attempts remaining for quiz %s (max %d)", e.QuizID, e.MaxAttempts)
}
