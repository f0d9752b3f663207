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

	"github.com/shivapreetham/quiz-application/internal/config"
	"github.com/shivapreetham/quiz-application/internal/domain"
	"github.com/shivapreetham/quiz-application/internal/infra/memory"
	pgloader "github.com/shivapreetham/quiz-application/internal/infra/postgres"
	redislib "github.com/shivapreetham/quiz-application/internal/infra/redis"
	"github.com/shivapreetham/quiz-application/internal/quiz"
	transport "github.com/shivapreetham/quiz-application/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	var loader memory.SetLoader = memory.NewStaticSetLoader(sampleSets())
	if pool != nil {
		loader = pgloader.NewSetLoader(pool)
	}

	libraryTTL := config.TTLDuration(cfg.Library.TTL, 10*time.Minute)
	var sets quiz.SetRepository
	if redisClient != nil {
		sets = redislib.NewSetRepository(redisClient, loader, libraryTTL)
	} else {
		sets = memory.NewSetRepository(loader, libraryTTL)
	}

	registry := quiz.NewRegistry(sets)
	wsHandler := transport.NewWSHandler(registry, cfg.AdminSecret())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/ws/admin", wsHandler.ServeAdminWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz server on :%s", finalPort)
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

// sampleSets provides a minimal problem-set library; configure Postgres to
// serve a real one.
func sampleSets() map[string]domain.ProblemSet {
	return map[string]domain.ProblemSet{
		"set-1": {
			ID:   "set-1",
			Name: "Arithmetic warmup",
			Problems: []domain.ProblemInput{
				{
					Title:       "Addition",
					Description: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: 0, Title: "3"},
						{ID: 1, Title: "4"},
						{ID: 2, Title: "5"},
					},
					Answer: 1,
				},
				{
					Title:       "Multiplication",
					Description: "What is 3 * 3?",
					Options: []domain.Option{
						{ID: 0, Title: "6"},
						{ID: 1, Title: "9"},
					},
					Answer: 1,
				},
			},
		},
	}
}
