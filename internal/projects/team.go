package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

// TeamService manages project memberships.
type TeamService struct {
	store    rbac.Store
	guard    *rbac.Guard
	activity activity.Sink
	logger   *slog.Logger
}

// NewTeamService constructs a TeamService.
func NewTeamService(store rbac.Store, guard *rbac.Guard, sink activity.Sink, logger *slog.Logger) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamService{store: store, guard: guard, activity: sink, logger: logger}
}

// ListMembers returns the explicit members of a project.
func (s *TeamService) ListMembers(ctx context.Context, projectID uuid.UUID) ([]rbac.Member, error) {
	if _, err := s.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []rbac.Member{}
	}
	return members, nil
}

// AddProjectMember grants a user a role on the project.
func (s *TeamService) AddProjectMember(ctx context.Context, projectID uuid.UUID, req AddMemberRequest) (*rbac.Membership, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionTeamManage)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	role, err := rbac.ParseProjectRole(req.Role)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.store.InsertMembership(ctx, rbac.NewMembership(projectID, req.UserID, role))
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyMember) {
			return nil, err
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	s.activity.Record(ctx, activity.NewEntry(projectID, activity.EntityMember, req.UserID, activity.VerbAssigned,
		fmt.Sprintf("Added %s as %s", displayName(profile), shared.HumanizeStatus(string(role))), actor.ID))
	return &m, nil
}

// UpdateMemberRole changes a member's role.
func (s *TeamService) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, req UpdateMemberRoleRequest) (*rbac.Membership, error) {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionTeamManage)
	if err != nil {
		return nil, err
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	role, err := rbac.ParseProjectRole(req.Role)
	if err != nil {
		return nil, err
	}
	m, err := s.store.UpdateMemberRole(ctx, projectID, userID, role)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, activity.NewEntry(projectID, activity.EntityMember, userID, activity.VerbUpdated,
		fmt.Sprintf("Changed %s to %s", s.nameOf(ctx, userID), shared.HumanizeStatus(string(role))), actor.ID))
	return &m, nil
}

// RemoveProjectMember revokes a membership. Members cannot remove themselves.
func (s *TeamService) RemoveProjectMember(ctx context.Context, projectID, userID uuid.UUID) error {
	actor, err := s.guard.Authorize(ctx, projectID, rbac.ActionTeamManage)
	if err != nil {
		return err
	}
	if userID == actor.ID {
		return shared.NewValidationError("user_id", "cannot remove yourself from the project")
	}
	name := s.nameOf(ctx, userID)
	if err := s.store.DeleteMembership(ctx, projectID, userID); err != nil {
		return err
	}
	s.activity.Record(ctx, activity.NewEntry(projectID, activity.EntityMember, userID, activity.VerbUpdated,
		"Removed "+name+" from the project", actor.ID))
	return nil
}

func (s *TeamService) nameOf(ctx context.Context, userID uuid.UUID) string {
	profile, err := s.store.Profile(ctx, userID)
	if err != nil {
		return userID.String()
	}
	return displayName(profile)
}

func displayName(p rbac.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID.String()
}
