package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskhive/taskhive/internal/tasks"
)

const defaultWarmupPages = 3

// ListWarmupJob pre-populates the task listing cache.
type ListWarmupJob struct {
	Tasks  *tasks.Service
	Logger *slog.Logger
	clock  func() time.Time
}

// NewListWarmupJob wires dependencies for the warmup handler.
func NewListWarmupJob(taskService *tasks.Service, logger *slog.Logger) *ListWarmupJob {
	return &ListWarmupJob{
		Tasks:  taskService,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes warmup tasks.
func (j *ListWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Tasks == nil {
		return errors.New("list warmup: handler not configured")
	}
	var payload ListWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Pages <= 0 {
		payload.Pages = defaultWarmupPages
	}

	started := j.clock()
	if err := j.Tasks.WarmListCache(ctx, payload.Pages); err != nil {
		j.logger().Error("task list warmup failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("task list warmup complete",
		slog.Int("pages", payload.Pages),
		slog.Duration("elapsed", j.clock().Sub(started)))
	return nil
}

func (j *ListWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
