package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"qcm-attempt-service/internal/domain"
)

func TestAttemptStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if _, err := store.Get(ctx, "missing"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}

	passed := false
	attempt := domain.Attempt{
		ID:               "attempt-1",
		QuizID:           "quiz-1",
		StudentID:        "student-1",
		AttemptNumber:    1,
		Status:           domain.AttemptExpired,
		StartedAt:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Answers:          map[int][]string{0: {"a"}},
		QuestionScores:   map[int]domain.QuestionScore{0: {EarnedPoints: 5, MaxPoints: 5, Correct: true}},
		TotalScore:       5,
		TimeSpentSeconds: 1800,
		Passed:           &passed,
	}
	if err := store.Save(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "attempt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.AttemptExpired || got.TotalScore != 5 || got.Passed == nil || *got.Passed {
		t.Fatalf("unexpected attempt: %+v", got)
	}
	if !mr.Exists("attempt:attempt-1") {
		t.Fatalf("expected snapshot key in redis")
	}
}

func TestAttemptStoreListsPriorAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	for _, a := range []domain.Attempt{
		{ID: "a2", QuizID: "quiz-1", StudentID: "s1", AttemptNumber: 2},
		{ID: "a1", QuizID: "quiz-1", StudentID: "s1", AttemptNumber: 1},
		{ID: "b1", QuizID: "quiz-1", StudentID: "s2", AttemptNumber: 1},
	} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("save %s: %v", a.ID, err)
		}
	}

	attempts, err := store.ListByStudentQuiz(ctx, "s1", "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 || attempts[0].AttemptNumber != 1 || attempts[1].AttemptNumber != 2 {
		t.Fatalf("expected s1's attempts ordered by number, got %+v", attempts)
	}
}

func TestAttemptStoreSkipsAgedOutSnapshots(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if err := store.Save(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", StudentID: "s1", AttemptNumber: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Simulate the snapshot aging out while the index entry lingers.
	mr.Del("attempt:a1")

	attempts, err := store.ListByStudentQuiz(ctx, "s1", "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected dangling index entry to be skipped, got %+v", attempts)
	}
}
