package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/api"
	"github.com/fridgechef/backend/internal/database"
	"github.com/fridgechef/backend/internal/logger"
	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/photo"
	"github.com/fridgechef/backend/internal/server"
	"github.com/fridgechef/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is not configured yet.
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log, err := logger.Init(cfg.Environment.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, analysis limits are not enforced", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx := context.Background()
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.Warn("object storage unavailable, photos are not archived", zap.Error(err))
	}
	var store service.ImageStore
	if s3cfg != nil {
		store = service.NewS3ImageStore(s3cfg)
	}

	llm, err := service.NewLLMService(cfg, log.Named("llm"))
	if err != nil {
		log.Fatal("failed to create LLM service", zap.Error(err))
	}

	users := service.NewUserService(db, log)
	processor := photo.NewProcessor(cfg.AllowedImageTypes, cfg.MaxImageSize, cfg.ImageResizeMax)

	srv := server.New(cfg, api.Deps{
		DB:      db,
		Auth:    service.NewAuthService(db, cfg.JWTSecret, cfg.AccessTokenTTL(), log),
		Users:   users,
		Recipes: service.NewRecipeService(db, log),
		Images:  service.NewImageService(db, llm, processor, store, log),
		LLM:     llm,
		Limiter: middleware.NewAnalysisRateLimiter(redisClient, cfg.MaxRequestsPerDay, log),
		Logger:  log,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
