package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"qcm-attempt-service/internal/domain"
)

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// AttemptRepository persists attempt snapshots (in-memory, Redis, Postgres).
type AttemptRepository interface {
	Get(ctx context.Context, attemptID string) (domain.Attempt, error)
	Save(ctx context.Context, attempt domain.Attempt) error
	ListByStudentQuiz(ctx context.Context, studentID, quizID string) ([]domain.Attempt, error)
}

// AttemptService orchestrates the attempt engine over the two stores. The
// engine itself does no I/O; the service loads the inputs, applies the
// transition, and persists the resulting snapshot. Transitions run under a
// per-attempt lock so at most one is in flight per attempt id.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	locks    keyedLocks
	now      func() time.Time
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptRepository) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: time.Now}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(quizzes QuizRepository, attempts AttemptRepository, now func() time.Time) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: now}
}

// Start begins a new attempt for the student if the max-attempts rule allows
// one more. Concurrent starts for the same student and quiz are serialized so
// attempt numbers stay unique.
func (s *AttemptService) Start(ctx context.Context, quizID, studentID string) (domain.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}

	unlock := s.locks.lock("start:" + studentID + ":" + quizID)
	defer unlock()

	prior, err := s.attempts.ListByStudentQuiz(ctx, studentID, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	attempt, err := domain.StartAttempt(quiz, studentID, prior, s.now())
	if err != nil {
		return domain.Attempt{}, err
	}
	attempt.ID = uuid.NewString()
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

// SubmitAnswer records an answer for a question of an in-progress attempt.
// Past the deadline the attempt expires instead and the answer is dropped.
func (s *AttemptService) SubmitAnswer(ctx context.Context, attemptID string, questionIndex int, choices []string) (domain.Attempt, error) {
	return s.transition(ctx, attemptID, func(attempt domain.Attempt, quiz domain.QuizDefinition) (domain.Attempt, error) {
		return domain.SubmitAnswer(attempt, quiz, questionIndex, choices, s.now())
	})
}

// Complete finishes the attempt and scores it.
func (s *AttemptService) Complete(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.transition(ctx, attemptID, func(attempt domain.Attempt, quiz domain.QuizDefinition) (domain.Attempt, error) {
		return domain.CompleteAttempt(attempt, quiz, s.now())
	})
}

// Abandon cancels the attempt; partial answers are scored but the attempt
// never counts as a pass.
func (s *AttemptService) Abandon(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.transition(ctx, attemptID, func(attempt domain.Attempt, quiz domain.QuizDefinition) (domain.Attempt, error) {
		return domain.AbandonAttempt(attempt, quiz, s.now())
	})
}

// SweepExpired expires the attempt if its deadline has passed; a no-op
// otherwise, so external sweeps can retry freely.
func (s *AttemptService) SweepExpired(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.transition(ctx, attemptID, func(attempt domain.Attempt, quiz domain.QuizDefinition) (domain.Attempt, error) {
		return domain.SweepExpired(attempt, quiz, s.now())
	})
}

// Get returns the current snapshot of an attempt.
func (s *AttemptService) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.attempts.Get(ctx, attemptID)
}

// Quiz returns the definition an attempt is taken against.
func (s *AttemptService) Quiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *AttemptService) transition(ctx context.Context, attemptID string, apply func(domain.Attempt, domain.QuizDefinition) (domain.Attempt, error)) (domain.Attempt, error) {
	unlock := s.locks.lock(attemptID)
	defer unlock()

	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	next, err := apply(attempt, quiz)
	if err != nil {
		return domain.Attempt{}, err
	}
	if err := s.attempts.Save(ctx, next); err != nil {
		return domain.Attempt{}, err
	}
	return next, nil
}

// keyedLocks hands out one mutex per key and drops entries once released,
// giving the single-writer-per-attempt discipline without a global lock.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*lockEntry)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
