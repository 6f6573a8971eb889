package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDescriptionsWarmup fills the product description cache.
	TaskDescriptionsWarmup = "descriptions:warmup"

	defaultWarmupConcurrency = 4
)

// DescriptionsWarmupPayload configures a warmup run.
type DescriptionsWarmupPayload struct {
	Concurrency int `json:"concurrency"`
}

// NewDescriptionsWarmupTask constructs the warmup task. Non-positive
// concurrency falls back to the default.
func NewDescriptionsWarmupTask(concurrency int) (*asynq.Task, error) {
	if concurrency <= 0 {
		concurrency = defaultWarmupConcurrency
	}
	data, err := json.Marshal(DescriptionsWarmupPayload{Concurrency: concurrency})
	if err != nil {
		return nil, fmt.Errorf("encode warmup payload: %w", err)
	}
	return asynq.NewTask(TaskDescriptionsWarmup, data), nil
}

func decodeWarmupPayload(data []byte) (DescriptionsWarmupPayload, error) {
	var payload DescriptionsWarmupPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return payload, err
		}
	}
	if payload.Concurrency <= 0 {
		payload.Concurrency = defaultWarmupConcurrency
	}
	return payload, nil
}
