package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/cache"
	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/database"
	"github.com/stemsi/student-management/internal/handler"
	"github.com/stemsi/student-management/internal/logger"
	"github.com/stemsi/student-management/internal/middleware"
	"github.com/stemsi/student-management/internal/repository"
	"github.com/stemsi/student-management/internal/router"
	"github.com/stemsi/student-management/internal/service"
	"github.com/stemsi/student-management/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Student Management API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Run Migrations ────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.MigrationsDir, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.MigrationsDir).Msg("Failed to apply migrations")
		}
		log.Info().Str("dir", cfg.MigrationsDir).Msg("Migrations applied")
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	var studentStore repository.StudentStore = studentRepo

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	switch {
	case errors.Is(err, database.ErrRedisDisabled):
		log.Info().Msg("REDIS_URL not set, student cache disabled")
	case err != nil:
		log.Warn().Err(err).Msg("Redis unavailable, student cache disabled")
	default:
		defer rdb.Close()
		studentCache := cache.NewStudentCache(studentRepo, rdb, cfg.CacheTTL, log.With().Str("component", "student_cache").Logger())
		if err := studentCache.Prewarm(ctx); err != nil {
			log.Warn().Err(err).Msg("Cache prewarm failed")
		}
		studentStore = studentCache
	}

	// ─── Initialize Services ──────────────────────────────────────────
	studentService := service.NewStudentService(studentStore, log.With().Str("component", "student_service").Logger())

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Student: handler.NewStudentHandler(studentService, log),
		Health:  handler.NewHealthHandler(studentRepo, log),
	}

	// ─── Rate Limiting (optional) ──────────────────────────────────────
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Stop()
		log.Info().Int("per_minute", cfg.RateLimitPerMinute).Msg("Rate limiting enabled")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, limiter)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
