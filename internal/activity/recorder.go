package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository stores activity entries. Append is idempotent on Entry.ID.
type Repository interface {
	Append(ctx context.Context, e Entry) (Entry, error)
	Recent(ctx context.Context, projectID uuid.UUID, limit int) ([]Entry, error)
}

// Sink is what mutation services depend on.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// Spool accepts entries whose append failed for a later retry.
type Spool interface {
	Enqueue(ctx context.Context, e Entry) error
}

// Publisher fans stored entries out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Entry) error
}

// FailureObserver counts failed appends.
type FailureObserver interface {
	ActivityWriteFailed(entityType string)
}

// RecorderOptions carries the optional collaborators of a Recorder.
type RecorderOptions struct {
	Cache     *Cache
	Spool     Spool
	Publisher Publisher
	Metrics   FailureObserver
	Logger    *slog.Logger
}

// Recorder appends entries after a mutation has committed. Failures never
// reach the caller: they are logged, counted and spooled.
type Recorder struct {
	repo      Repository
	cache     *Cache
	spool     Spool
	publisher Publisher
	metrics   FailureObserver
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo Repository, opts RecorderOptions) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:      repo,
		cache:     opts.Cache,
		spool:     opts.Spool,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Record stamps e and appends it.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if !e.EntityType.IsValid() || !e.Action.IsValid() {
		r.logger.Error("activity invalid entry",
			slog.String("entity_type", string(e.EntityType)),
			slog.String("action", string(e.Action)),
		)
		r.failed(e)
		return
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	// The mutation already committed; a cancelled request must not drop its entry.
	ctx = context.WithoutCancel(ctx)
	stored, err := r.repo.Append(ctx, e)
	if err != nil {
		r.logger.Warn("activity append failed",
			slog.String("project_id", e.ProjectID.String()),
			slog.String("entity_type", string(e.EntityType)),
			slog.String("entry_id", e.ID.String()),
			slog.Any("error", err),
		)
		r.failed(e)
		if r.spool != nil {
			if err := r.spool.Enqueue(ctx, e); err != nil {
				r.logger.Error("activity spool failed", slog.String("entry_id", e.ID.String()), slog.Any("error", err))
			}
		}
		return
	}
	r.afterAppend(ctx, stored)
}

// Replay appends a spooled entry. Unlike Record it reports failure so the
// retry job can back off.
func (r *Recorder) Replay(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("activity replay: entry id required")
	}
	stored, err := r.repo.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("activity replay: %w", err)
	}
	r.afterAppend(ctx, stored)
	return nil
}

func (r *Recorder) afterAppend(ctx context.Context, e Entry) {
	if err := r.cache.Bump(ctx, e.ProjectID); err != nil {
		r.logger.Warn("activity cache bump", slog.String("project_id", e.ProjectID.String()), slog.Any("error", err))
	}
	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.logger.Warn("activity publish", slog.String("entry_id", e.ID.String()), slog.Any("error", err))
		}
	}
}

func (r *Recorder) failed(e Entry) {
	if r.metrics != nil {
		r.metrics.ActivityWriteFailed(string(e.EntityType))
	}
}
