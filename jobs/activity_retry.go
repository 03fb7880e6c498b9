package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/railyard/railyard/internal/activity"
	jobmetrics "github.com/railyard/railyard/internal/jobs"
)

// Replayer appends a spooled entry, reporting failure.
type Replayer interface {
	Replay(ctx context.Context, e activity.Entry) error
}

// ActivityRetryJob drains the activity spool.
type ActivityRetryJob struct {
	Replayer Replayer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewActivityRetryJob constructs the retry handler.
func NewActivityRetryJob(replayer Replayer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ActivityRetryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityRetryJob{Replayer: replayer, Logger: logger.With(slog.String("job", TaskActivityRetry)), Metrics: metrics}
}

// Handle appends the entry carried by t. Appends are idempotent on the entry
// id, so asynq redelivery is harmless.
func (j *ActivityRetryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Replayer == nil {
		return errors.New("activity retry: handler not configured")
	}
	var payload ActivityRetryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || !payload.Entry.EntityType.IsValid() {
		j.Logger.Error("discarding malformed activity retry payload")
		return asynq.SkipRetry
	}

	return j.Metrics.Observe(TaskActivityRetry, func() error {
		if err := j.Replayer.Replay(ctx, payload.Entry); err != nil {
			j.Logger.Warn("activity replay failed", slog.String("entry_id", payload.Entry.ID.String()), slog.Any("error", err))
			return err
		}
		j.Metrics.ActivityReplayed()
		return nil
	})
}

// Enqueuer is the subset of asynq.Client used to spool entries.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ActivitySpool hands failed activity writes to the retry queue.
type ActivitySpool struct {
	client Enqueuer
}

// NewActivitySpool constructs an ActivitySpool.
func NewActivitySpool(client Enqueuer) *ActivitySpool {
	return &ActivitySpool{client: client}
}

// Enqueue implements activity.Spool. A duplicate task id means the entry is
// already spooled.
func (s *ActivitySpool) Enqueue(ctx context.Context, e activity.Entry) error {
	task, err := NewActivityRetryTask(e)
	if err != nil {
		return fmt.Errorf("activity spool: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("activity spool: %w", err)
	}
	return nil
}
