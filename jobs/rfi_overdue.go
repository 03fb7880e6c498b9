package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/railyard/railyard/internal/jobs"
)

// OverdueMarker flips open RFIs past due to overdue and reports how many moved.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// RFIOverdueJob runs the periodic RFI overdue sweep.
type RFIOverdueJob struct {
	Marker  OverdueMarker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRFIOverdueJob initialises the sweep handler.
func NewRFIOverdueJob(marker OverdueMarker, logger *slog.Logger, metrics *jobmetrics.Metrics) *RFIOverdueJob {
	return &RFIOverdueJob{
		Marker:  marker,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the sweep.
func (j *RFIOverdueJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Marker == nil {
		return errors.New("rfi overdue sweep: handler not configured")
	}
	var payload RFIOverdueSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	now := payload.ScheduledFor
	if now.IsZero() {
		now = j.clock()
	}

	logger := j.logger()
	return j.Metrics.Observe(TaskRFIOverdueSweep, func() error {
		moved, err := j.Marker.MarkOverdue(ctx, now)
		if err != nil {
			logger.Error("sweep failed", slog.Any("error", err))
			return err
		}
		j.Metrics.AddOverdue(moved)
		logger.Info("sweep complete", slog.Int("marked_overdue", moved), slog.Time("as_of", now))
		return nil
	})
}

func (j *RFIOverdueJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRFIOverdueSweep))
	}
	return slog.Default().With(slog.String("job", TaskRFIOverdueSweep))
}
