package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"

	"go-interview-backend/config"
	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/ai/fallback"
	"go-interview-backend/internal/ai/gemini"
	v1 "go-interview-backend/internal/delivery/http/v1"
	"go-interview-backend/internal/notify"
	"go-interview-backend/internal/repository/postgres"
	"go-interview-backend/internal/resume"
	"go-interview-backend/internal/usecase"
	"go-interview-backend/pkg/database"
	"go-interview-backend/pkg/logger"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting interview backend", "port", cfg.Port)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)

	// 5. Setup AI Gateway
	// A missing key is a supported configuration: the disabled gateway makes
	// the fallback engine serve every interview.
	var gateway ai.Gateway
	if cfg.GeminiAPIKey != "" {
		gateway, err = gemini.New(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
		})
		if err != nil {
			logger.Log.Warn("Gemini client setup failed, using deterministic fallbacks", "error", err)
			gateway = ai.NewDisabled()
		}
	} else {
		gateway = ai.NewDisabled()
	}

	// 6. Setup Redis (dashboard events + shared rate limit counters)
	var (
		redisClient *goredis.Client
		publisher   notify.Publisher = notify.NewNoop()
	)
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisConnection(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis connection failed, dashboard events disabled", "error", err)
		} else {
			defer redisClient.Close()
			publisher = notify.NewRedis(redisClient)
		}
	}

	// 7. Setup UseCases
	validate := validator.New()
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, interviewRepo, resume.NewTextExtractor(), validate)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, candidateRepo, gateway, fallback.New(), publisher)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		InterviewUC: interviewUC,
		CandidateUC: candidateUC,
		Redis:       redisClient,
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
