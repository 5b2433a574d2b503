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

// QuizLoader loads quiz definition JSONB from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.QuizDefinition
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
