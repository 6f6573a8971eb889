package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/chamanbahar/cbm-sales/internal/descriptions"
	jobmetrics "github.com/chamanbahar/cbm-sales/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer fills the description cache.
type Warmer interface {
	Warm(ctx context.Context, concurrency int) (descriptions.WarmResult, error)
}

// DescriptionsWarmupJob fetches every product description that is not cached yet.
type DescriptionsWarmupJob struct {
	Warmer  Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewDescriptionsWarmupJob wires dependencies for the warmup handler.
func NewDescriptionsWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DescriptionsWarmupJob {
	return &DescriptionsWarmupJob{
		Warmer:  warmer,
		Logger:  logger,
		Metrics: metrics,
		Timeout: 10 * time.Minute,
	}
}

// Handle processes TaskDescriptionsWarmup tasks.
func (j *DescriptionsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("descriptions warmup: handler not configured")
	}
	payload, err := decodeWarmupPayload(t.Payload())
	if err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDescriptionsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("run_id", uuid.NewString()), slog.Int("concurrency", payload.Concurrency))
	logger.Info("starting descriptions warmup")
	started := time.Now()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	result, err := j.Warmer.Warm(ctx, payload.Concurrency)
	tracker.AddItems("fetched", result.Fetched)
	tracker.AddItems("cached", result.Cached)
	tracker.AddItems("failed", result.Failed)
	tracker.AddItems("skipped", result.Skipped)
	if err != nil {
		resultErr = err
		logger.Error("descriptions warmup", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed descriptions warmup",
		slog.Int("fetched", result.Fetched),
		slog.Int("cached", result.Cached),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", time.Since(started)))
	return resultErr
}

func (j *DescriptionsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDescriptionsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDescriptionsWarmup))
}

func (j *DescriptionsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
