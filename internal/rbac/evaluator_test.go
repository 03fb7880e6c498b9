package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/shared"
)

var (
	uuidA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	uuidB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

type countingDirectory struct {
	*MemoryStore
	membershipLookups int
	fail              error
}

func (d *countingDirectory) FindMembership(ctx context.Context, projectID, userID uuid.UUID) (Membership, error) {
	d.membershipLookups++
	if d.fail != nil {
		return Membership{}, d.fail
	}
	return d.MemoryStore.FindMembership(ctx, projectID, userID)
}

type fixture struct {
	store     *MemoryStore
	dir       *countingDirectory
	evaluator *Evaluator
	project   uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := NewMemoryStore()
	dir := &countingDirectory{MemoryStore: store}
	project := uuid.New()
	store.AddProject(project)
	return fixture{store: store, dir: dir, evaluator: NewEvaluator(dir), project: project}
}

func (f fixture) user(role GlobalRole) uuid.UUID {
	id := uuid.New()
	f.store.PutProfile(Profile{ID: id, Email: id.String() + "@site.test", GlobalRole: role})
	return id
}

func (f fixture) member(t *testing.T, global GlobalRole, role ProjectRole) uuid.UUID {
	t.Helper()
	id := f.user(global)
	_, err := f.store.InsertMembership(context.Background(), NewMembership(f.project, id, role))
	require.NoError(t, err)
	return id
}

func TestCheckPermissionAdminBypass(t *testing.T) {
	f := newFixture(t)
	admin := f.user(GlobalAdmin)

	for _, a := range Actions() {
		d, err := f.evaluator.CheckPermission(context.Background(), admin, f.project, a)
		require.NoError(t, err)
		assert.True(t, d.Allowed, a)
		assert.True(t, d.Bypass)
		assert.Nil(t, d.Membership)
	}
	assert.Zero(t, f.dir.membershipLookups, "bypass must not consult memberships")
}

func TestAdminOnUnknownProjectIsNotFound(t *testing.T) {
	f := newFixture(t)
	admin := f.user(GlobalAdmin)
	missing := uuid.New()

	d, err := f.evaluator.CheckPermission(context.Background(), admin, missing, ActionSubmittalCreate)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.False(t, d.Bypass)
	assert.ErrorIs(t, d.Err(), shared.ErrNotFound)
	assert.Equal(t, "project_not_found", d.Outcome())

	_, err = f.evaluator.ResolveMembership(context.Background(), admin, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCheckPermissionAdminWithExplicitLowRole(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, GlobalAdmin, RoleOwner)

	d, err := f.evaluator.CheckPermission(context.Background(), admin, f.project, ActionProjectDelete)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.Bypass)
}

func TestResolveMembershipImplicitAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.user(GlobalAdmin)

	m, err := f.evaluator.ResolveMembership(context.Background(), admin, f.project)
	require.NoError(t, err)
	assert.Equal(t, RoleManager, m.Role)
	assert.True(t, m.CanEdit)
	assert.True(t, m.Implicit)
	assert.Equal(t, f.project, m.ProjectID)
}

func TestResolveMembershipExplicitRowWins(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, GlobalAdmin, RoleInspector)

	m, err := f.evaluator.ResolveMembership(context.Background(), admin, f.project)
	require.NoError(t, err)
	assert.Equal(t, RoleInspector, m.Role)
	assert.False(t, m.CanEdit)
	assert.False(t, m.Implicit)
}

func TestResolveMembershipNonMember(t *testing.T) {
	f := newFixture(t)
	outsider := f.user(GlobalManager)

	_, err := f.evaluator.ResolveMembership(context.Background(), outsider, f.project)
	assert.ErrorIs(t, err, shared.ErrNotAMember)
}

func TestCheckPermissionDenials(t *testing.T) {
	f := newFixture(t)
	foreman := f.member(t, GlobalMember, RoleForeman)
	outsider := f.user(GlobalManager)
	ghost := uuid.New()

	cases := []struct {
		name   string
		actor  uuid.UUID
		action Action
		reason error
	}{
		{"not authenticated", uuid.Nil, ActionRFICreate, shared.ErrNotAuthenticated},
		{"profile missing", ghost, ActionRFICreate, shared.ErrProfileNotFound},
		{"not a member", outsider, ActionRFICreate, shared.ErrNotAMember},
		{"role lacks action", foreman, ActionPunchListVerify, shared.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := f.evaluator.CheckPermission(context.Background(), tc.actor, f.project, tc.action)
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.ErrorIs(t, d.Err(), tc.reason)
		})
	}
}

func TestCheckPermissionNonMemberDeniedEverywhere(t *testing.T) {
	f := newFixture(t)
	outsider := f.user(GlobalMember)
	for _, a := range Actions() {
		d, err := f.evaluator.CheckPermission(context.Background(), outsider, f.project, a)
		require.NoError(t, err)
		assert.ErrorIs(t, d.Err(), shared.ErrNotAMember)
	}
}

func TestCheckPermissionAllowedReturnsMembership(t *testing.T) {
	f := newFixture(t)
	engineer := f.member(t, GlobalMember, RoleEngineer)

	d, err := f.evaluator.CheckPermission(context.Background(), engineer, f.project, ActionSubmittalReview)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.NotNil(t, d.Membership)
	assert.Equal(t, RoleEngineer, d.Membership.Role)
	assert.False(t, d.Bypass)
	assert.Equal(t, "allowed", d.Outcome())
}

func TestCheckPermissionInfrastructureError(t *testing.T) {
	f := newFixture(t)
	actor := f.user(GlobalMember)
	f.dir.fail = errors.New("connection reset")

	_, err := f.evaluator.CheckPermission(context.Background(), actor, f.project, ActionRFICreate)
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotAMember)
}

func TestCheckPermissionUnknownActionPanics(t *testing.T) {
	f := newFixture(t)
	admin := f.user(GlobalAdmin)
	assert.Panics(t, func() {
		_, _ = f.evaluator.CheckPermission(context.Background(), admin, f.project, Action("bogus"))
	})
}
