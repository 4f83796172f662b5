package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/chamada/internal/auth"
	"github.com/saturnino-fabrica-de-software/chamada/internal/cache"
	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/database"
	"github.com/saturnino-fabrica-de-software/chamada/internal/face"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Chamada API",
		slog.String("version", version),
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.ProviderType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	// Database
	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return err
	}
	defer pool.Close()

	// Embedding service and optional enrollment precheck
	embeddings, err := face.NewEmbeddingProvider(cfg)
	if err != nil {
		return err
	}
	faceCounter, err := face.NewFaceCounter(ctx, cfg)
	if err != nil {
		return err
	}

	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		},
		"embeddings": embeddings.Ready,
	}

	// Roster cache: Redis when configured, otherwise every read hits Postgres
	var rosterStore cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = redisCache.Close() }()
		rosterStore = redisCache
		checks["redis"] = redisCache.Ping
		logger.Info("roster cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.RosterCacheTTL))
	}

	// Repositories
	classroomRepo := repository.NewClassroomRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)

	router := api.NewRouter(logger, version, &api.Dependencies{
		ClassroomRepo:  classroomRepo,
		StudentRepo:    studentRepo,
		AttendanceRepo: attendanceRepo,
		Roster:         cache.NewRosterCache(rosterStore, studentRepo, cfg.RosterCacheTTL, logger),
		Trainer: training.NewManager(studentRepo, training.Config{
			Capacity: cfg.MaxTrainingSamples,
		}, logger),
		Provider:      embeddings,
		FaceCounter:   faceCounter,
		Authenticator: auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Policy: matcher.Policy{
			Threshold: cfg.MatchThreshold,
			Gap:       cfg.MatchGap,
		},
		Location:           location,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadinessChecks:    checks,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}
