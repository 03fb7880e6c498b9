package milestones

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

// Repository persists milestones. Every method is scoped by project id.
type Repository interface {
	Insert(ctx context.Context, m Milestone) (Milestone, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Milestone, error)
	List(ctx context.Context, projectID uuid.UUID) ([]Milestone, error)
	Update(ctx context.Context, m Milestone) (Milestone, error)
}

// Service provides milestone operations.
type Service struct {
	repo     Repository
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a milestone service.
func NewService(repo Repository, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateMilestone adds a pending milestone.
func (s *Service) CreateMilestone(ctx context.Context, projectID uuid.UUID, req CreateRequest) (*Milestone, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionMilestoneCreate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	name, err := shared.RequireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	target, err := shared.ParseDate("target_date", &req.TargetDate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, Milestone{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		TargetDate:  *target,
		Status:      StatusPending,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}
	s.record(ctx, created, activity.VerbCreated,
		fmt.Sprintf("%s (target %s)", created.Name, created.TargetDate.Format(shared.DateLayout)), actor.ID)
	return &created, nil
}

// UpdateMilestone edits a milestone. Completing it stamps the actual date
// when none is set and raises progress to 100 unless a percentage is given.
func (s *Service) UpdateMilestone(ctx context.Context, projectID, id uuid.UUID, req UpdateRequest) (*Milestone, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionMilestoneUpdate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	m, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := shared.RequireText("name", *req.Name)
		if err != nil {
			return nil, err
		}
		m.Name = name
	}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.TargetDate != nil {
		target, err := shared.ParseDate("target_date", req.TargetDate)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, shared.NewValidationError("target_date", "is required")
		}
		m.TargetDate = *target
	}
	if req.ActualDate != nil {
		actual, err := shared.ParseDate("actual_date", req.ActualDate)
		if err != nil {
			return nil, err
		}
		m.ActualDate = actual
	}
	if req.PercentComplete != nil {
		m.PercentComplete = *req.PercentComplete
	}

	previous := m.Status
	if req.Status != nil {
		m.Status = Status(*req.Status)
	}
	now := s.now().UTC()
	if m.Status == StatusComplete && previous != StatusComplete {
		if m.ActualDate == nil {
			today := shared.TruncateDay(now)
			m.ActualDate = &today
		}
		if req.PercentComplete == nil {
			m.PercentComplete = 100
		}
	}
	m.UpdatedAt = now

	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("update milestone: %w", err)
	}
	if updated.Status != previous {
		s.record(ctx, updated, activity.VerbStatusChanged,
			updated.Name+" marked "+shared.HumanizeStatus(string(updated.Status)), actor.ID)
	} else {
		s.record(ctx, updated, activity.VerbUpdated, "Updated "+updated.Name, actor.ID)
	}
	return &updated, nil
}

// ListMilestones returns the project's milestones by target date.
func (s *Service) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]Milestone, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	if list == nil {
		list = []Milestone{}
	}
	return list, nil
}

func (s *Service) record(ctx context.Context, m Milestone, verb activity.Verb, desc string, actorID uuid.UUID) {
	s.activity.Record(ctx, activity.NewEntry(m.ProjectID, activity.EntityMilestone, m.ID, verb, desc, actorID))
}
