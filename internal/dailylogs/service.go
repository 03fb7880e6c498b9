package dailylogs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

// ErrDuplicateDate reports a second log for an already recorded day.
var ErrDuplicateDate = shared.NewValidationError("log_date", "a daily log already exists for this date")

// Repository persists daily logs. Insert returns ErrDuplicateDate when the
// project already has a log for the date.
type Repository interface {
	Insert(ctx context.Context, log DailyLog) (DailyLog, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (DailyLog, error)
	List(ctx context.Context, projectID uuid.UUID, window Range) ([]DailyLog, error)
	Update(ctx context.Context, log DailyLog) (DailyLog, error)
}

// Service provides daily log operations.
type Service struct {
	repo     Repository
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a daily log service.
func NewService(repo Repository, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateDailyLog records the log for a day.
func (s *Service) CreateDailyLog(ctx context.Context, projectID uuid.UUID, req CreateRequest) (*DailyLog, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionDailyLogCreate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	work, err := shared.RequireText("work_performed", req.WorkPerformed)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseDate("log_date", &req.LogDate)
	if err != nil {
		return nil, err
	}
	if err := checkTemperatures(req.TemperatureHigh, req.TemperatureLow); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, DailyLog{
		ID:              uuid.New(),
		ProjectID:       projectID,
		LogDate:         *day,
		Weather:         strings.TrimSpace(req.Weather),
		TemperatureHigh: req.TemperatureHigh,
		TemperatureLow:  req.TemperatureLow,
		CrewCount:       req.CrewCount,
		WorkPerformed:   work,
		Delays:          strings.TrimSpace(req.Delays),
		SafetyNotes:     strings.TrimSpace(req.SafetyNotes),
		CreatedBy:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("create daily log: %w", err)
	}
	s.record(ctx, created, activity.VerbCreated, "Daily log for "+created.LogDate.Format(shared.DateLayout), actor.ID)
	return &created, nil
}

// UpdateDailyLog edits a recorded log.
func (s *Service) UpdateDailyLog(ctx context.Context, projectID, id uuid.UUID, req UpdateRequest) (*DailyLog, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionDailyLogEdit)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	log, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if req.Weather != nil {
		log.Weather = strings.TrimSpace(*req.Weather)
	}
	if req.TemperatureHigh != nil {
		log.TemperatureHigh = req.TemperatureHigh
	}
	if req.TemperatureLow != nil {
		log.TemperatureLow = req.TemperatureLow
	}
	if req.CrewCount != nil {
		log.CrewCount = *req.CrewCount
	}
	if req.WorkPerformed != nil {
		work, err := shared.RequireText("work_performed", *req.WorkPerformed)
		if err != nil {
			return nil, err
		}
		log.WorkPerformed = work
	}
	if req.Delays != nil {
		log.Delays = strings.TrimSpace(*req.Delays)
	}
	if req.SafetyNotes != nil {
		log.SafetyNotes = strings.TrimSpace(*req.SafetyNotes)
	}
	if err := checkTemperatures(log.TemperatureHigh, log.TemperatureLow); err != nil {
		return nil, err
	}
	log.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("update daily log: %w", err)
	}
	s.record(ctx, updated, activity.VerbUpdated, "Updated daily log for "+updated.LogDate.Format(shared.DateLayout), actor.ID)
	return &updated, nil
}

// GetDailyLog returns one log of the project.
func (s *Service) GetDailyLog(ctx context.Context, projectID, id uuid.UUID) (*DailyLog, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	log, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListDailyLogs returns logs within window, newest day first.
func (s *Service) ListDailyLogs(ctx context.Context, projectID uuid.UUID, window Range) ([]DailyLog, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	if window.From != nil && window.To != nil && window.To.Before(*window.From) {
		return nil, shared.NewValidationError("to", "must not be before from")
	}
	list, err := s.repo.List(ctx, projectID, window)
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	if list == nil {
		list = []DailyLog{}
	}
	return list, nil
}

func checkTemperatures(high, low *int) error {
	if high != nil && low != nil && *low > *high {
		return shared.NewValidationError("temperature_low", "must not exceed temperature_high")
	}
	return nil
}

func (s *Service) record(ctx context.Context, log DailyLog, verb activity.Verb, desc string, actorID uuid.UUID) {
	s.activity.Record(ctx, activity.NewEntry(log.ProjectID, activity.EntityDailyLog, log.ID, verb, desc, actorID))
}
