package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// Directory exposes the identity and membership facts the evaluator needs.
type Directory interface {
	// GlobalRole returns shared.ErrProfileNotFound when the actor has no profile.
	GlobalRole(ctx context.Context, userID uuid.UUID) (GlobalRole, error)
	// FindMembership returns shared.ErrNotFound when no row exists.
	FindMembership(ctx context.Context, projectID, userID uuid.UUID) (Membership, error)
	ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error)
}

// Evaluator decides whether an actor may perform an action on a project.
type Evaluator struct {
	dir Directory
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(dir Directory) *Evaluator {
	return &Evaluator{dir: dir}
}

// GlobalRole resolves the actor-wide role.
func (e *Evaluator) GlobalRole(ctx context.Context, actorID uuid.UUID) (GlobalRole, error) {
	if actorID == uuid.Nil {
		return "", shared.ErrNotAuthenticated
	}
	role, err := e.dir.GlobalRole(ctx, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			return "", shared.ErrProfileNotFound
		}
		return "", fmt.Errorf("rbac: global role: %w", err)
	}
	return role, nil
}

// ResolveMembership returns the actor's membership in the project. An explicit
// row wins. Without one, a global admin receives an implicit manager
// membership; anyone else gets shared.ErrNotAMember.
func (e *Evaluator) ResolveMembership(ctx context.Context, actorID, projectID uuid.UUID) (Membership, error) {
	global, err := e.GlobalRole(ctx, actorID)
	if err != nil {
		return Membership{}, err
	}
	return e.membershipFor(ctx, actorID, projectID, global)
}

func (e *Evaluator) membershipFor(ctx context.Context, actorID, projectID uuid.UUID, global GlobalRole) (Membership, error) {
	m, err := e.dir.FindMembership(ctx, projectID, actorID)
	if err == nil {
		m.CanEdit = m.Role.CanEdit()
		m.Implicit = false
		return m, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Membership{}, fmt.Errorf("rbac: find membership: %w", err)
	}
	if global == GlobalAdmin {
		if err := e.requireProject(ctx, projectID); err != nil {
			return Membership{}, err
		}
		return implicitAdminMembership(projectID, actorID), nil
	}
	return Membership{}, shared.ErrNotAMember
}

// requireProject returns shared.ErrNotFound for an unknown project.
func (e *Evaluator) requireProject(ctx context.Context, projectID uuid.UUID) error {
	ok, err := e.dir.ProjectExists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("rbac: project exists: %w", err)
	}
	if !ok {
		return shared.ErrNotFound
	}
	return nil
}

// implicitAdminMembership is synthesized with the manager role so admins
// surface as full-capability members wherever membership is displayed.
func implicitAdminMembership(projectID, actorID uuid.UUID) Membership {
	return Membership{
		ProjectID: projectID,
		UserID:    actorID,
		Role:      RoleManager,
		CanEdit:   RoleManager.CanEdit(),
		Implicit:  true,
	}
}

// CheckPermission evaluates action for the actor on the project. Denials are
// reported through Decision.Reason; the returned error is reserved for
// infrastructure failures. Unknown actions panic.
func (e *Evaluator) CheckPermission(ctx context.Context, actorID, projectID uuid.UUID, action Action) (Decision, error) {
	mustKnowAction(action)

	global, err := e.GlobalRole(ctx, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrProfileNotFound) {
			return Decision{Reason: err}, nil
		}
		return Decision{}, err
	}

	// Global admin short-circuits before any membership lookup.
	if global == GlobalAdmin {
		if err := e.requireProject(ctx, projectID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Decision{Reason: err, GlobalRole: global}, nil
			}
			return Decision{}, err
		}
		return Decision{Allowed: true, Bypass: true, GlobalRole: global}, nil
	}

	m, err := e.membershipFor(ctx, actorID, projectID, global)
	if err != nil {
		if errors.Is(err, shared.ErrNotAMember) {
			return Decision{Reason: shared.ErrNotAMember, GlobalRole: global}, nil
		}
		return Decision{}, err
	}
	if !CanPerform(m.Role, action) {
		return Decision{Reason: shared.ErrPermissionDenied, GlobalRole: global, Membership: &m}, nil
	}
	return Decision{Allowed: true, GlobalRole: global, Membership: &m}, nil
}

// Err returns the denial reason, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == nil {
		return shared.ErrPermissionDenied
	}
	return d.Reason
}

// Outcome is the metric label for d.
func (d Decision) Outcome() string {
	switch {
	case d.Bypass:
		return "bypass"
	case d.Allowed:
		return "allowed"
	case errors.Is(d.Reason, shared.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(d.Reason, shared.ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(d.Reason, shared.ErrNotAMember):
		return "not_a_member"
	case errors.Is(d.Reason, shared.ErrNotFound):
		return "project_not_found"
	default:
		return "permission_denied"
	}
}
