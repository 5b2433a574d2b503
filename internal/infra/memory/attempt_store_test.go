package memory

import (
	"context"
	"testing"
	"time"

	"qcm-attempt-service/internal/domain"
)

func TestAttemptStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if _, err := store.Get(ctx, "missing"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}

	attempt := domain.Attempt{
		ID:            "attempt-1",
		QuizID:        "quiz-1",
		StudentID:     "student-1",
		AttemptNumber: 1,
		Status:        domain.AttemptInProgress,
		StartedAt:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Answers:       map[int][]string{0: {"a"}},
	}
	if err := store.Save(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "attempt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.QuizID != "quiz-1" || len(got.Answers[0]) != 1 {
		t.Fatalf("unexpected attempt: %+v", got)
	}
}

func TestAttemptStoreListsByStudentQuizOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	for _, a := range []domain.Attempt{
		{ID: "a2", QuizID: "quiz-1", StudentID: "s1", AttemptNumber: 2},
		{ID: "a1", QuizID: "quiz-1", StudentID: "s1", AttemptNumber: 1},
		{ID: "b1", QuizID: "quiz-1", StudentID: "s2", AttemptNumber: 1},
		{ID: "c1", QuizID: "quiz-2", StudentID: "s1", AttemptNumber: 1},
	} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("save %s: %v", a.ID, err)
		}
	}

	attempts, err := store.ListByStudentQuiz(ctx, "s1", "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].AttemptNumber != 1 || attempts[1].AttemptNumber != 2 {
		t.Fatalf("expected ordering by attempt number, got %+v", attempts)
	}
}
