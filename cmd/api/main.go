package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"flipyard/internal/cache"
	"flipyard/internal/config"
	"flipyard/internal/database"
	"flipyard/internal/handlers"
	"flipyard/internal/inference"
	"flipyard/internal/jobs"
	"flipyard/internal/log"
	"flipyard/internal/notify"
	"flipyard/internal/queue"
	"flipyard/internal/ratelimit"
	"flipyard/internal/repository"
	"flipyard/internal/security"
	"flipyard/internal/server"
	"flipyard/internal/service"
	"flipyard/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "api")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	// Interface values stay nil when a backend is not configured.
	var objects service.ObjectStore
	if cfg.Storage.Enabled() {
		store, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		objects = store
	} else {
		logger.Warn().Msg("object storage not configured, uploads disabled")
	}

	publisher := queue.NewPublisher(redisClient, cfg.Queue.Stream)

	var notifier notify.Notifier
	if cfg.Mail.Enabled() {
		notifier = notify.NewQueueNotifier(publisher, logger)
	} else {
		logger.Warn().Msg("mail not configured, password reset and inquiries disabled")
	}

	hasher, err := security.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init password hasher")
	}

	users := repository.NewUserRepository(dbPool)
	listings := repository.NewListingRepository(dbPool)
	images := repository.NewImageRepository(dbPool)

	authService := service.NewAuthService(
		users,
		repository.NewSessionRepository(dbPool),
		repository.NewResetTokenRepository(dbPool),
		notifier,
		hasher,
		cfg,
		logger,
	)
	inquiryService := service.NewInquiryService(
		repository.NewInquiryRepository(dbPool),
		listings,
		users,
		ratelimit.NewRedisLimiter(redisClient, "inquiry", cfg.RateLimit.InquiryLimit, cfg.RateLimit.InquiryWindow),
		notifier,
		cfg.BaseURL,
		logger,
	)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Services{
		Auth:      authService,
		Generator: inference.NewEngine(cfg.Inference, logger),
		Listings:  service.NewListingService(listings, logger),
		Inquiries: inquiryService,
		Uploads:   service.NewUploadService(images, objects, cfg.Uploads.MaxBytes, logger),
		Admin:     service.NewAdminService(users, logger),
	},
		handlers.HealthCheck{Name: "database", Ping: dbPool.Ping},
		handlers.HealthCheck{Name: "cache", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(publisher, cfg.Uploads.CleanupSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
