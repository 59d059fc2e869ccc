// Package jobs hosts the background worker and its task handlers.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskListWarmup is the task type that pre-populates the task listing
	// cache after wholesale invalidations.
	TaskListWarmup = "tasks:list:warmup"
)

// ListWarmupPayload configures one warmup run.
type ListWarmupPayload struct {
	Pages int `json:"pages"`
}

// NewListWarmupTask constructs an Asynq task.
func NewListWarmupTask(payload ListWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskListWarmup, data), nil
}
