package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qcm-attempt-service/internal/domain"
)

// AttemptStore persists attempt snapshots as JSONB rows. The lookup columns
// (quiz, student, attempt number) are denormalized so prior attempts can be
// listed without unpacking the document.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM attempts WHERE id=$1`, attemptID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) Save(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO attempts (id, quiz_id, student_id, attempt_number, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		attempt.ID, attempt.QuizID, attempt.StudentID, attempt.AttemptNumber, data)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListByStudentQuiz(ctx context.Context, studentID, quizID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM attempts
		WHERE student_id=$1 AND quiz_id=$2
		ORDER BY attempt_number`, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
