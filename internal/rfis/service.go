package rfis

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

// Repository persists RFIs and their responses. Every method except
// MarkOverdue is scoped by project id.
type Repository interface {
	Insert(ctx context.Context, rfi RFI) (RFI, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (RFI, error)
	List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]RFI, error)
	Update(ctx context.Context, rfi RFI) (RFI, error)
	// AddResponse stores resp and rfi together.
	AddResponse(ctx context.Context, resp Response, rfi RFI) (RFI, error)
	Responses(ctx context.Context, projectID, rfiID uuid.UUID) ([]Response, error)
	// MarkOverdue flips open RFIs due before cutoff to overdue and returns them.
	MarkOverdue(ctx context.Context, cutoff, now time.Time) ([]RFI, error)
}

// Service provides RFI operations.
type Service struct {
	repo     Repository
	seq      shared.Sequencer
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs an RFI service.
func NewService(repo Repository, seq shared.Sequencer, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, seq: seq, guard: guard, activity: sink, logger: logger, now: time.Now}
}

// CreateRFI opens an RFI with the next RFI number.
func (s *Service) CreateRFI(ctx context.Context, projectID uuid.UUID, req CreateRequest) (*RFI, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionRFICreate)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	subject, err := shared.RequireText("subject", req.Subject)
	if err != nil {
		return nil, err
	}
	question, err := shared.RequireText("question", req.Question)
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
	number, err := shared.NextEntityNumber(ctx, s.seq, projectID, shared.SequenceRFI)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, RFI{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Number:     number,
		Subject:    subject,
		Question:   question,
		Priority:   priority,
		Status:     StatusOpen,
		AssignedTo: req.AssignedTo,
		DueDate:    due,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("create rfi: %w", err)
	}
	s.record(ctx, created, activity.VerbCreated, created.Number+": "+created.Subject, actor.ID)
	return &created, nil
}

// AssignRFI routes an RFI to a project member for an answer.
func (s *Service) AssignRFI(ctx context.Context, projectID, id uuid.UUID, req AssignRequest) (*RFI, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionRFIRespond)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if err := s.guard.RequireAssignee(ctx, projectID, req.UserID); err != nil {
		return nil, err
	}
	rfi, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if rfi.Status == StatusClosed {
		return nil, shared.NewValidationError("status", "RFI is closed")
	}
	assignee := req.UserID
	rfi.AssignedTo = &assignee
	rfi.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, rfi)
	if err != nil {
		return nil, fmt.Errorf("assign rfi: %w", err)
	}
	s.record(ctx, updated, activity.VerbAssigned, "Assigned "+updated.Number+": "+updated.Subject, actor.ID)
	return &updated, nil
}

// AddResponse appends to the RFI thread. An official response needs
// rfi:respond and answers an open or overdue RFI; comments need membership.
func (s *Service) AddResponse(ctx context.Context, projectID, id uuid.UUID, req ResponseRequest) (*Response, error) {
	var (
		actor rbac.Actor
		err   error
	)
	if req.Official {
		actor, err = s.guard.Authorize(ctx, projectID, rbac.ActionRFIRespond)
	} else {
		actor, err = s.guard.RequireMember(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	body, err := shared.RequireText("body", req.Body)
	if err != nil {
		return nil, err
	}
	rfi, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if rfi.Status == StatusClosed {
		return nil, shared.NewValidationError("status", "RFI is closed")
	}

	now := s.now().UTC()
	resp := Response{
		ID:        uuid.New(),
		RFIID:     rfi.ID,
		ProjectID: projectID,
		Body:      body,
		Official:  req.Official,
		AuthorID:  actor.ID,
		CreatedAt: now,
	}
	if req.Official && rfi.Status.AwaitsAnswer() {
		rfi.Status = StatusAnswered
		rfi.AnsweredAt = &now
	}
	rfi.UpdatedAt = now
	if _, err := s.repo.AddResponse(ctx, resp, rfi); err != nil {
		return nil, fmt.Errorf("add rfi response: %w", err)
	}

	desc := rfi.Number + ": comment added"
	if req.Official {
		desc = rfi.Number + ": official response - " + shared.Summarize(body, 80)
	}
	s.record(ctx, rfi, activity.VerbCommented, desc, actor.ID)
	return &resp, nil
}

// CloseRFI closes an RFI.
func (s *Service) CloseRFI(ctx context.Context, projectID, id uuid.UUID) (*RFI, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionRFIClose)
	if err != nil {
		return nil, err
	}
	rfi, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if rfi.Status == StatusClosed {
		return nil, fmt.Errorf("%w: RFI is already closed", shared.ErrInvalidTransition)
	}
	now := s.now().UTC()
	closer := actor.ID
	rfi.Status = StatusClosed
	rfi.ClosedBy = &closer
	rfi.ClosedAt = &now
	rfi.UpdatedAt = now
	updated, err := s.repo.Update(ctx, rfi)
	if err != nil {
		return nil, fmt.Errorf("close rfi: %w", err)
	}
	s.record(ctx, updated, activity.VerbStatusChanged, updated.Number+" closed", actor.ID)
	return &updated, nil
}

// ReopenRFI returns a closed RFI to open.
func (s *Service) ReopenRFI(ctx context.Context, projectID, id uuid.UUID) (*RFI, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionRFIClose)
	if err != nil {
		return nil, err
	}
	rfi, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if rfi.Status != StatusClosed {
		return nil, fmt.Errorf("%w: only closed RFIs can be reopened", shared.ErrInvalidTransition)
	}
	rfi.Status = StatusOpen
	rfi.ClosedBy = nil
	rfi.ClosedAt = nil
	rfi.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, rfi)
	if err != nil {
		return nil, fmt.Errorf("reopen rfi: %w", err)
	}
	s.record(ctx, updated, activity.VerbStatusChanged, updated.Number+" reopened", actor.ID)
	return &updated, nil
}

// MarkOverdue flags open RFIs whose due date is before today. It runs as the
// system actor and is not permission-gated.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	today := shared.TruncateDay(now)
	flagged, err := s.repo.MarkOverdue(ctx, today, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark rfis overdue: %w", err)
	}
	for _, rfi := range flagged {
		s.record(ctx, rfi, activity.VerbStatusChanged, rfi.Number+" is overdue", uuid.Nil)
	}
	if len(flagged) > 0 {
		s.logger.Info("rfis marked overdue", slog.Int("count", len(flagged)))
	}
	return len(flagged), nil
}

// GetRFI returns an RFI with its responses.
func (s *Service) GetRFI(ctx context.Context, projectID, id uuid.UUID) (*Detail, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	rfi, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.repo.Responses(ctx, projectID, id)
	if err != nil {
		return nil, fmt.Errorf("rfi responses: %w", err)
	}
	if responses == nil {
		responses = []Response{}
	}
	return &Detail{RFI: rfi, Responses: responses}, nil
}

// ListRFIs returns the project's RFIs ordered by number.
func (s *Service) ListRFIs(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]RFI, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewValidationError("status", "is not an RFI status")
	}
	list, err := s.repo.List(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("list rfis: %w", err)
	}
	if list == nil {
		list = []RFI{}
	}
	return list, nil
}

func (s *Service) record(ctx context.Context, rfi RFI, verb activity.Verb, desc string, actorID uuid.UUID) {
	s.activity.Record(ctx, activity.NewEntry(rfi.ProjectID, activity.EntityRFI, rfi.ID, verb, strings.TrimSpace(desc), actorID))
}
