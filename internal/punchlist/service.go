package punchlist

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

// Repository persists punch-list items. Every method is scoped by project id.
type Repository interface {
	Insert(ctx context.Context, item Item) (Item, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Item, error)
	List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Item, error)
	Update(ctx context.Context, item Item) (Item, error)
}

// Service provides punch-list operations.
type Service struct {
	repo     Repository
	seq      shared.Sequencer
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a punch-list service.
func NewService(repo Repository, seq shared.Sequencer, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, seq: seq, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateItem opens an item with the next PL number.
func (s *Service) CreateItem(ctx context.Context, projectID uuid.UUID, req CreateRequest) (*Item, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionPunchListCreate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	title, err := shared.RequireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	due, err := shared.ParseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.AssignedTo != nil {
		if err := s.guard.RequireAssignee(ctx, projectID, *req.AssignedTo); err != nil {
			return nil, err
		}
	}
	priority := Priority(req.Priority)
	if priority == "" {
		priority = PriorityNormal
	}
	number, err := shared.NextEntityNumber(ctx, s.seq, projectID, shared.SequencePunchList)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, Item{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Number:      number,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Priority:    priority,
		Status:      StatusOpen,
		AssignedTo:  req.AssignedTo,
		DueDate:     due,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create punch item: %w", err)
	}
	desc := created.Number + ": " + created.Title
	if created.Location != "" {
		desc += " (" + created.Location + ")"
	}
	s.record(ctx, created, activity.VerbCreated, desc, actor.ID)
	return &created, nil
}

// AssignItem hands an item to a project member.
func (s *Service) AssignItem(ctx context.Context, projectID, id uuid.UUID, req AssignRequest) (*Item, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionPunchListCreate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if err := s.guard.RequireAssignee(ctx, projectID, req.UserID); err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	assignee := req.UserID
	item.AssignedTo = &assignee
	item.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("assign punch item: %w", err)
	}
	s.record(ctx, updated, activity.VerbAssigned, "Assigned "+updated.Number+": "+updated.Title, actor.ID)
	return &updated, nil
}

// requiredAction maps a target status to its gating action; empty means
// membership alone suffices.
func requiredAction(next Status) rbac.Action {
	switch next {
	case StatusResolved:
		return rbac.ActionPunchListResolve
	case StatusVerified:
		return rbac.ActionPunchListVerify
	default:
		return ""
	}
}

// UpdateItemStatus moves an item through its lifecycle.
func (s *Service) UpdateItemStatus(ctx context.Context, projectID, id uuid.UUID, req StatusRequest) (*Item, error) {
	// Authentication precedes payload validation.
	if _, ok := shared.ActorFromContext(ctx); !ok {
		return nil, shared.ErrNotAuthenticated
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	next := Status(req.Status)

	var (
		actor rbac.Actor
		err   error
	)
	if action := requiredAction(next); action != "" {
		actor, err = s.guard.Authorize(ctx, projectID, action)
	} else {
		actor, err = s.guard.RequireMember(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", shared.ErrInvalidTransition, item.Status, next)
	}

	now := s.now().UTC()
	by := actor.ID
	switch next {
	case StatusResolved:
		item.ResolvedBy = &by
		item.ResolvedAt = &now
		item.ResolutionNotes = strings.TrimSpace(req.Notes)
	case StatusVerified:
		item.VerifiedBy = &by
		item.VerifiedAt = &now
	case StatusOpen:
		item.ResolvedBy, item.ResolvedAt = nil, nil
		item.VerifiedBy, item.VerifiedAt = nil, nil
		item.ResolutionNotes = ""
	}
	item.Status = next
	item.UpdatedAt = now

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("update punch item status: %w", err)
	}
	s.record(ctx, updated, activity.VerbStatusChanged,
		updated.Number+" marked "+shared.HumanizeStatus(string(updated.Status)), actor.ID)
	return &updated, nil
}

// GetItem returns one item of the project.
func (s *Service) GetItem(ctx context.Context, projectID, id uuid.UUID) (*Item, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns the project's items ordered by number.
func (s *Service) ListItems(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Item, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewValidationError("status", "is not a punch list status")
	}
	list, err := s.repo.List(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("list punch items: %w", err)
	}
	if list == nil {
		list = []Item{}
	}
	return list, nil
}

func (s *Service) record(ctx context.Context, item Item, verb activity.Verb, desc string, actorID uuid.UUID) {
	s.activity.Record(ctx, activity.NewEntry(item.ProjectID, activity.EntityPunchListItem, item.ID, verb, desc, actorID))
}
