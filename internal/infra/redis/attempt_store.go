package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"qcm-attempt-service/internal/domain"
)

// AttemptStore persists attempt snapshots in Redis:
//
//	SET  attempt:{attemptID} {json} EX ttl
//	SADD attempt:index:{studentID}:{quizID} {attemptID}
//
// The retention TTL applies to snapshots and index alike; prior-attempt
// counting only needs attempts inside the retention window.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	raw, err := s.client.Get(ctx, s.attemptKey(attemptID)).Bytes()
	if err == redis.Nil {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, err
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

func (s *AttemptStore) Save(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	indexKey := s.indexKey(attempt.StudentID, attempt.QuizID)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.attemptKey(attempt.ID), data, s.ttl)
	pipe.SAdd(ctx, indexKey, attempt.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, indexKey, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *AttemptStore) ListByStudentQuiz(ctx context.Context, studentID, quizID string) ([]domain.Attempt, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(studentID, quizID)).Result()
	if err != nil {
		return nil, err
	}
	attempts := make([]domain.Attempt, 0, len(ids))
	for _, id := range ids {
		attempt, err := s.Get(ctx, id)
		if err == domain.ErrAttemptNotFound {
			// Snapshot aged out of retention; skip the dangling index entry.
			continue
		}
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].AttemptNumber < attempts[j].AttemptNumber
	})
	return attempts, nil
}

func (s *AttemptStore) attemptKey(attemptID string) string {
	return "attempt:" + attemptID
}

func (s *AttemptStore) indexKey(studentID, quizID string) string {
	return "attempt:index:" + studentID + ":" + quizID
}
