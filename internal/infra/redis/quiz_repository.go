package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"qcm-attempt-service/internal/domain"
)

// QuizLoader fetches quiz definitions from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// QuizRepository caches full quiz definitions in Redis as JSON and falls back
// to a loader on cache miss. The scorer needs the complete definition
// (choices, correct sets, points, limits), so the whole document is cached:
// SET quiz:{quizID}:def {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	key := r.defKey(quizID)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var quiz domain.QuizDefinition
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable cache entry falls through to the loader.
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			var quiz domain.QuizDefinition
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDefinition{}, err
		}

		if data, err := json.Marshal(quiz); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

func (r *QuizRepository) defKey(quizID string) string {
	return "quiz:" + quizID + ":def"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
