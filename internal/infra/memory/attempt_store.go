package memory

import (
	"context"
	"sort"
	"sync"

	"qcm-attempt-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
	}
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) Save(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *AttemptStore) ListByStudentQuiz(_ context.Context, studentID, quizID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for _, attempt := range s.attempts {
		if attempt.StudentID == studentID && attempt.QuizID == quizID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttemptNumber < out[j].AttemptNumber
	})
	return out, nil
}
