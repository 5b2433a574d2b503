package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"qcm-attempt-service/internal/app"
	"qcm-attempt-service/internal/config"
	"qcm-attempt-service/internal/domain"
	"qcm-attempt-service/internal/infra/memory"
	pgstore "qcm-attempt-service/internal/infra/postgres"
	redisstore "qcm-attempt-service/internal/infra/redis"
	transport "qcm-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	retention := config.TTLDuration(cfg.Attempt.Retention, 24*time.Hour)
	var attempts app.AttemptRepository
	switch {
	case pool != nil:
		attempts = pgstore.NewAttemptStore(pool)
	case redisClient != nil:
		attempts = redisstore.NewAttemptStore(redisClient, retention)
	default:
		attempts = memory.NewAttemptStore()
	}

	service := app.NewAttemptService(quizRepo, attempts)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting attempt service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides minimal quiz content for running without Postgres.
func sampleQuizzes() map[string]domain.QuizDefinition {
	passing := 10
	return map[string]domain.QuizDefinition{
		"quiz-1": {
			ID:               "quiz-1",
			Title:            "Demo QCM",
			TimeLimitMinutes: 30,
			PassingScore:     &passing,
			MaxAttempts:      2,
			Questions: []domain.Question{
				{
					Type:   domain.SingleChoice,
					Prompt: "What is 2 + 2?",
					Choices: []domain.Choice{
						{ID: "a", Label: "3"},
						{ID: "b", Label: "4"},
						{ID: "c", Label: "5"},
					},
					CorrectAnswers: []string{"b"},
					Points:         5,
				},
				{
					Type:   domain.MultipleChoice,
					Prompt: "Which numbers are even?",
					Choices: []domain.Choice{
						{ID: "x", Label: "2"},
						{ID: "y", Label: "4"},
						{ID: "z", Label: "7"},
					},
					CorrectAnswers: []string{"x", "y"},
					Points:         10,
				},
			},
		},
	}
}
