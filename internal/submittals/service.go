package submittals

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

// Repository persists submittals. Every method is scoped by project id.
type Repository interface {
	Insert(ctx context.Context, s Submittal) (Submittal, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Submittal, error)
	List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Submittal, error)
	Update(ctx context.Context, s Submittal) (Submittal, error)
}

// Service provides submittal operations.
type Service struct {
	repo     Repository
	seq      shared.Sequencer
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a submittal service.
func NewService(repo Repository, seq shared.Sequencer, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, seq: seq, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateSubmittal opens a draft submittal with the next SUB number.
func (s *Service) CreateSubmittal(ctx context.Context, projectID uuid.UUID, req CreateRequest) (*Submittal, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionSubmittalCreate)
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
	number, err := shared.NextEntityNumber(ctx, s.seq, projectID, shared.SequenceSubmittal)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, Submittal{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Number:      number,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		SpecSection: strings.TrimSpace(req.SpecSection),
		Status:      StatusDraft,
		DueDate:     due,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create submittal: %w", err)
	}
	s.record(ctx, created, activity.VerbCreated, created.Number+": "+created.Title, actor.ID)
	return &created, nil
}

// UpdateSubmittal edits content while the submittal is with its author.
func (s *Service) UpdateSubmittal(ctx context.Context, projectID, id uuid.UUID, req UpdateRequest) (*Submittal, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionSubmittalEdit)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	sub, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !sub.Status.IsEditable() {
		return nil, shared.NewValidationError("status", "submittal cannot be edited while "+shared.HumanizeStatus(string(sub.Status)))
	}
	if req.Title != nil {
		if sub.Title, err = shared.RequireText("title", *req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		sub.Description = strings.TrimSpace(*req.Description)
	}
	if req.SpecSection != nil {
		sub.SpecSection = strings.TrimSpace(*req.SpecSection)
	}
	if req.DueDate != nil {
		if sub.DueDate, err = shared.ParseDate("due_date", req.DueDate); err != nil {
			return nil, err
		}
	}
	sub.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("update submittal: %w", err)
	}
	s.record(ctx, updated, activity.VerbUpdated, "Updated "+updated.Number+": "+updated.Title, actor.ID)
	return &updated, nil
}

// UpdateSubmittalStatus moves a submittal through review. Reviewer outcomes
// need submittal:review; submitting and starting review need membership.
func (s *Service) UpdateSubmittalStatus(ctx context.Context, projectID, id uuid.UUID, req StatusRequest) (*Submittal, error) {
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
	if next.IsReviewOutcome() {
		actor, err = s.guard.Authorize(ctx, projectID, rbac.ActionSubmittalReview)
	} else {
		actor, err = s.guard.RequireMember(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !sub.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", shared.ErrInvalidTransition, sub.Status, next)
	}

	now := s.now().UTC()
	sub.Status = next
	sub.UpdatedAt = now
	switch {
	case next == StatusSubmitted:
		sub.SubmittedBy = &actor.ID
		sub.SubmittedAt = &now
		sub.ReviewedBy = nil
		sub.ReviewedAt = nil
		sub.ReviewNotes = ""
	case next.IsReviewOutcome():
		sub.ReviewedBy = &actor.ID
		sub.ReviewedAt = &now
		sub.ReviewNotes = strings.TrimSpace(req.Notes)
	}

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("update submittal status: %w", err)
	}
	verb, desc := statusActivity(updated)
	s.record(ctx, updated, verb, desc, actor.ID)
	return &updated, nil
}

func statusActivity(sub Submittal) (activity.Verb, string) {
	switch sub.Status {
	case StatusSubmitted:
		return activity.VerbSubmitted, sub.Number + " submitted for review"
	case StatusApproved:
		return activity.VerbApproved, sub.Number + " approved"
	case StatusConditional:
		return activity.VerbApproved, sub.Number + " conditionally approved"
	case StatusRejected:
		return activity.VerbRejected, sub.Number + " rejected"
	default:
		return activity.VerbStatusChanged, sub.Number + " moved to " + shared.HumanizeStatus(string(sub.Status))
	}
}

// GetSubmittal returns one submittal of the project.
func (s *Service) GetSubmittal(ctx context.Context, projectID, id uuid.UUID) (*Submittal, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	sub, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmittals returns the project's submittals ordered by number.
func (s *Service) ListSubmittals(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Submittal, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewValidationError("status", "is not a submittal status")
	}
	list, err := s.repo.List(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("list submittals: %w", err)
	}
	if list == nil {
		list = []Submittal{}
	}
	return list, nil
}

func (s *Service) record(ctx context.Context, sub Submittal, verb activity.Verb, desc string, actorID uuid.UUID) {
	s.activity.Record(ctx, activity.NewEntry(sub.ProjectID, activity.EntitySubmittal, sub.ID, verb, desc, actorID))
}
