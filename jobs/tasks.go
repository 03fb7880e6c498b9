package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/railyard/railyard/internal/activity"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRFIOverdueSweep moves open RFIs past their due date to overdue.
	TaskRFIOverdueSweep = "rfi:overdue_sweep"
	// TaskActivityRetry appends an activity entry whose first write failed.
	TaskActivityRetry = "activity:retry"
)

// RFIOverdueSweepPayload carries scheduling metadata.
type RFIOverdueSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRFIOverdueSweepTask constructs the sweep task. A zero at means "now"
// when the task runs.
func NewRFIOverdueSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(RFIOverdueSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRFIOverdueSweep, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// ActivityRetryPayload wraps the spooled entry.
type ActivityRetryPayload struct {
	Entry activity.Entry `json:"entry"`
}

// NewActivityRetryTask constructs a retry task keyed by the entry id, so a
// second enqueue of the same entry is rejected by the queue.
func NewActivityRetryTask(e activity.Entry) (*asynq.Task, error) {
	body, err := json.Marshal(ActivityRetryPayload{Entry: e})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityRetry, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID("activity:"+e.ID.String()),
		asynq.MaxRetry(10),
	), nil
}

// NewTaskByType builds a task for manual triggering.
func NewTaskByType(taskType string) (*asynq.Task, error) {
	switch taskType {
	case TaskRFIOverdueSweep:
		return NewRFIOverdueSweepTask(time.Time{})
	default:
		return nil, fmt.Errorf("jobs: task %q cannot be triggered manually", taskType)
	}
}
