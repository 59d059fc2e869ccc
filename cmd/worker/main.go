package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/platform/cache"
	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/internal/users"
	"github.com/taskhive/taskhive/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The worker exists to keep the cache warm; without redis it has no job.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	userRepo := users.NewRepository(pool)
	taskRepo := tasks.NewRepository(pool)
	listCache := cache.NewTagCache(redisClient, tasks.ListCacheTTL, logger)
	taskService := tasks.NewService(taskRepo, userRepo.Principal, listCache, logger)

	warmupJob := jobs.NewListWarmupJob(taskService, logger)
	warmupTask, err := jobs.NewListWarmupTask(jobs.ListWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskListWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: warmupTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
