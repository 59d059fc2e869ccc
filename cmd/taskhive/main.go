package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/platform/cache"
	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	var listCache *cache.TagCache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, task list cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		listCache = cache.NewTagCache(redisClient, tasks.ListCacheTTL, logger)
	}

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)

	taskRepo := tasks.NewRepository(pool)
	taskService := tasks.NewService(taskRepo, userRepo.Principal, listCache, logger)

	// Role changes rewrite the task role snapshots, so the cached listings
	// scoped by those snapshots have to go too.
	userService.NotifyRoleChange(taskService.FlushListCache)

	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTTTL)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthService:  authService,
		AuthHandler:  auth.NewHandler(logger, authService),
		UsersHandler: users.NewHandler(logger, userService),
		TasksHandler: tasks.NewHandler(logger, taskService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
