package rbac

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// DecisionObserver receives one observation per guarded check.
type DecisionObserver interface {
	ObserveDecision(action, outcome string)
}

const membershipCheck = "membership"

// Guard applies the permission evaluator to the actor carried in context.
// Mutation services call it before touching storage.
type Guard struct {
	evaluator *Evaluator
	observer  DecisionObserver
	logger    *slog.Logger
}

// NewGuard constructs a Guard. observer may be nil.
func NewGuard(evaluator *Evaluator, observer DecisionObserver, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{evaluator: evaluator, observer: observer, logger: logger}
}

// Evaluator exposes the underlying evaluator.
func (g *Guard) Evaluator() *Evaluator {
	return g.evaluator
}

// Authorize requires that the context actor may perform action on the project.
func (g *Guard) Authorize(ctx context.Context, projectID uuid.UUID, action Action) (Actor, error) {
	actorID, ok := shared.ActorFromContext(ctx)
	if !ok {
		g.observe(string(action), "not_authenticated")
		return Actor{}, shared.ErrNotAuthenticated
	}
	decision, err := g.evaluator.CheckPermission(ctx, actorID, projectID, action)
	if err != nil {
		g.logger.Error("rbac authorize", slog.String("action", string(action)), slog.String("project_id", projectID.String()), slog.Any("error", err))
		return Actor{}, err
	}
	g.observe(string(action), decision.Outcome())
	if !decision.Allowed {
		g.logger.Debug("rbac denied",
			slog.String("action", string(action)),
			slog.String("project_id", projectID.String()),
			slog.String("actor_id", actorID.String()),
			slog.String("reason", decision.Outcome()),
		)
		return Actor{}, decision.Err()
	}
	return Actor{
		ID:         actorID,
		GlobalRole: decision.GlobalRole,
		Membership: decision.Membership,
		Bypass:     decision.Bypass,
	}, nil
}

// RequireMember gates reads and membership-only transitions. Global admins
// pass with an implicit membership when they hold no row.
func (g *Guard) RequireMember(ctx context.Context, projectID uuid.UUID) (Actor, error) {
	actorID, ok := shared.ActorFromContext(ctx)
	if !ok {
		g.observe(membershipCheck, "not_authenticated")
		return Actor{}, shared.ErrNotAuthenticated
	}
	global, err := g.evaluator.GlobalRole(ctx, actorID)
	if err != nil {
		return Actor{}, g.denyOrFail(membershipCheck, err)
	}
	m, err := g.evaluator.membershipFor(ctx, actorID, projectID, global)
	if err != nil {
		return Actor{}, g.denyOrFail(membershipCheck, err)
	}
	g.observe(membershipCheck, "allowed")
	return Actor{ID: actorID, GlobalRole: global, Membership: &m}, nil
}

// IsMember reports whether userID may act in the project, counting the
// implicit membership of global admins. Used to vet assignees.
func (g *Guard) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	_, err := g.evaluator.ResolveMembership(ctx, userID, projectID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrNotAMember),
		errors.Is(err, shared.ErrProfileNotFound),
		errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// RequireAssignee fails with a validation error unless userID is a project member.
func (g *Guard) RequireAssignee(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := g.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewValidationError("assigned_to", "must be a member of this project")
	}
	return nil
}

// RequireGlobalRole gates operations that are not scoped to a project.
func (g *Guard) RequireGlobalRole(ctx context.Context, allowed ...GlobalRole) (Actor, error) {
	actor, err := g.Identify(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !slices.Contains(allowed, actor.GlobalRole) {
		return Actor{}, shared.ErrPermissionDenied
	}
	return actor, nil
}

// Identify resolves the context actor and its global role.
func (g *Guard) Identify(ctx context.Context) (Actor, error) {
	actorID, ok := shared.ActorFromContext(ctx)
	if !ok {
		return Actor{}, shared.ErrNotAuthenticated
	}
	global, err := g.evaluator.GlobalRole(ctx, actorID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: actorID, GlobalRole: global, Bypass: global == GlobalAdmin}, nil
}

func (g *Guard) denyOrFail(check string, err error) error {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		g.observe(check, "not_authenticated")
	case errors.Is(err, shared.ErrProfileNotFound):
		g.observe(check, "profile_not_found")
	case errors.Is(err, shared.ErrNotAMember):
		g.observe(check, "not_a_member")
	case errors.Is(err, shared.ErrNotFound):
		g.observe(check, "project_not_found")
	default:
		g.logger.Error("rbac require member", slog.Any("error", err))
	}
	return err
}

func (g *Guard) observe(action, outcome string) {
	if g.observer != nil {
		g.observer.ObserveDecision(action, outcome)
	}
}
