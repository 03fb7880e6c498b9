package projects

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

// Repository persists projects.
type Repository interface {
	// Create stores p together with the creator's manager membership.
	Create(ctx context.Context, p Project, manager rbac.Membership) (Project, error)
	Get(ctx context.Context, id uuid.UUID) (Project, error)
	ListAll(ctx context.Context) ([]Project, error)
	ListForMember(ctx context.Context, userID uuid.UUID) ([]Project, error)
	Update(ctx context.Context, p Project) (Project, error)
}

// Service provides project operations.
type Service struct {
	repo     Repository
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a project service.
func NewService(repo Repository, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateProject creates a project. Only global admins and managers may start
// projects; the creator becomes an explicit manager member.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	actor, err := s.guard.RequireGlobalRole(ctx, rbac.GlobalAdmin, rbac.GlobalManager)
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
	start, end, err := parseSchedule(req.StartDate, req.EndDate, nil, nil)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := Project{
		ID:          uuid.New(),
		Name:        name,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, p, rbac.NewMembership(p.ID, actor.ID, rbac.RoleManager))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.activity.Record(ctx, activity.NewEntry(created.ID, activity.EntityProject, created.ID, activity.VerbCreated,
		"Created project "+created.Name, actor.ID))
	return &created, nil
}

// GetProject returns a project visible to the actor.
func (s *Service) GetProject(ctx context.Context, projectID uuid.UUID) (*Project, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the actor's projects. Global admins see every project.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	actor, err := s.guard.Identify(ctx)
	if err != nil {
		return nil, err
	}
	var list []Project
	if actor.GlobalRole == rbac.GlobalAdmin {
		list, err = s.repo.ListAll(ctx)
	} else {
		list, err = s.repo.ListForMember(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if list == nil {
		list = []Project{}
	}
	return list, nil
}

// UpdateProject patches project details.
func (s *Service) UpdateProject(ctx context.Context, projectID uuid.UUID, req UpdateProjectRequest) (*Project, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionProjectEdit)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	previous := p.Status

	if req.Name != nil {
		if p.Name, err = shared.RequireText("name", *req.Name); err != nil {
			return nil, err
		}
	}
	if req.Code != nil {
		p.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.Status != nil {
		p.Status = Status(*req.Status)
	}
	if p.StartDate, p.EndDate, err = parseSchedule(req.StartDate, req.EndDate, p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	verb, desc := activity.VerbUpdated, "Updated project "+updated.Name
	if updated.Status != previous {
		verb = activity.VerbStatusChanged
		desc = fmt.Sprintf("Project %s moved to %s", updated.Name, shared.HumanizeStatus(string(updated.Status)))
	}
	s.activity.Record(ctx, activity.NewEntry(projectID, activity.EntityProject, projectID, verb, desc, actor.ID))
	return &updated, nil
}

// ArchiveProject retires a project. Projects are never hard-deleted so their
// activity trail survives.
func (s *Service) ArchiveProject(ctx context.Context, projectID uuid.UUID) (*Project, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionProjectDelete)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusArchived {
		return nil, shared.NewValidationError("status", "project is already archived")
	}
	p.Status = StatusArchived
	p.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("archive project: %w", err)
	}
	s.activity.Record(ctx, activity.NewEntry(projectID, activity.EntityProject, projectID, activity.VerbStatusChanged,
		"Archived project "+updated.Name, actor.ID))
	return &updated, nil
}

func parseSchedule(rawStart, rawEnd *string, start, end *time.Time) (*time.Time, *time.Time, error) {
	if rawStart != nil {
		parsed, err := shared.ParseDate("start_date", rawStart)
		if err != nil {
			return nil, nil, err
		}
		start = parsed
	}
	if rawEnd != nil {
		parsed, err := shared.ParseDate("end_date", rawEnd)
		if err != nil {
			return nil, nil, err
		}
		end = parsed
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, shared.NewValidationError("end_date", "must not be before start_date")
	}
	return start, end, nil
}
