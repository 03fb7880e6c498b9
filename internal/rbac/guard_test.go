package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/shared"
)

type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveDecision(action, outcome string) {
	o.outcomes = append(o.outcomes, action+"="+outcome)
}

func TestGuardAuthorize(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	guard := NewGuard(f.evaluator, obs, nil)
	inspector := f.member(t, GlobalMember, RoleInspector)
	ctx := shared.ContextWithActor(context.Background(), inspector)

	actor, err := guard.Authorize(ctx, f.project, ActionPunchListVerify)
	require.NoError(t, err)
	assert.Equal(t, inspector, actor.ID)
	require.NotNil(t, actor.Membership)
	assert.Equal(t, RoleInspector, actor.Membership.Role)

	_, err = guard.Authorize(ctx, f.project, ActionPunchListResolve)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = guard.Authorize(context.Background(), f.project, ActionRFICreate)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

	assert.Equal(t, []string{
		"punch_list:verify=allowed",
		"punch_list:resolve=permission_denied",
		"rfi:create=not_authenticated",
	}, obs.outcomes)
}

func TestGuardRequireMember(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.evaluator, nil, nil)
	owner := f.member(t, GlobalViewer, RoleOwner)
	admin := f.user(GlobalAdmin)
	outsider := f.user(GlobalMember)

	actor, err := guard.RequireMember(shared.ContextWithActor(context.Background(), owner), f.project)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, actor.Membership.Role)

	actor, err = guard.RequireMember(shared.ContextWithActor(context.Background(), admin), f.project)
	require.NoError(t, err)
	assert.True(t, actor.Membership.Implicit)
	assert.Equal(t, RoleManager, actor.Membership.Role)

	_, err = guard.RequireMember(shared.ContextWithActor(context.Background(), outsider), f.project)
	assert.ErrorIs(t, err, shared.ErrNotAMember)

	_, err = guard.RequireMember(shared.ContextWithActor(context.Background(), uuid.New()), f.project)
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestGuardAdminUnknownProject(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.evaluator, nil, nil)
	ctx := shared.ContextWithActor(context.Background(), f.user(GlobalAdmin))
	missing := uuid.New()

	_, err := guard.Authorize(ctx, missing, ActionRFICreate)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = guard.RequireMember(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGuardRequireGlobalRole(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.evaluator, nil, nil)
	manager := f.user(GlobalManager)
	viewer := f.user(GlobalViewer)

	actor, err := guard.RequireGlobalRole(shared.ContextWithActor(context.Background(), manager), GlobalAdmin, GlobalManager)
	require.NoError(t, err)
	assert.Equal(t, GlobalManager, actor.GlobalRole)

	_, err = guard.RequireGlobalRole(shared.ContextWithActor(context.Background(), viewer), GlobalAdmin, GlobalManager)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestGuardRequireAssignee(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.evaluator, nil, nil)
	owner := f.member(t, GlobalMember, RoleOwner)
	admin := f.user(GlobalAdmin)
	outsider := f.user(GlobalMember)
	ctx := context.Background()

	require.NoError(t, guard.RequireAssignee(ctx, f.project, owner))
	require.NoError(t, guard.RequireAssignee(ctx, f.project, admin))
	assert.ErrorIs(t, guard.RequireAssignee(ctx, f.project, outsider), shared.ErrValidation)
	assert.ErrorIs(t, guard.RequireAssignee(ctx, f.project, uuid.New()), shared.ErrValidation)
}
