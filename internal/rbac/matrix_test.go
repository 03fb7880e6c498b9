package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixIsTotal(t *testing.T) {
	for _, role := range ProjectRoles() {
		_, ok := matrix[role]
		assert.True(t, ok, "role %s missing", role)
	}
	reachable := map[Action]bool{}
	for _, set := range matrix {
		for a := range set {
			reachable[a] = true
		}
	}
	for _, a := range Actions() {
		assert.True(t, reachable[a], "action %s unreachable", a)
	}
}

func TestRoleGrants(t *testing.T) {
	expected := map[ProjectRole][]Action{
		RoleForeman: {
			ActionDailyLogCreate, ActionDailyLogEdit,
			ActionPunchListCreate, ActionPunchListResolve,
			ActionRFICreate, ActionSubmittalCreate,
		},
		RoleInspector: {
			ActionDailyLogCreate, ActionPunchListCreate, ActionPunchListVerify, ActionRFICreate,
		},
		RoleOwner: {ActionRFICreate},
	}
	for role, actions := range expected {
		got := AllowedActions(role)
		require.Len(t, got, len(actions), role)
		for _, a := range actions {
			assert.True(t, got.Has(a), "%s should hold %s", role, a)
		}
	}
	assert.Len(t, AllowedActions(RoleManager), len(Actions()))
	assert.False(t, CanPerform(RoleSuperintendent, ActionProjectDelete))
	assert.False(t, CanPerform(RoleSuperintendent, ActionTeamManage))
	assert.True(t, CanPerform(RoleEngineer, ActionSubmittalReview))
	assert.False(t, CanPerform(RoleContractor, ActionSubmittalReview))
}

func TestAllowedActionsIsPure(t *testing.T) {
	for _, role := range ProjectRoles() {
		first := AllowedActions(role)
		first[ActionProjectDelete] = struct{}{}
		second := AllowedActions(role)
		assert.Equal(t, AllowedActions(role), second)
		if role != RoleManager {
			assert.False(t, second.Has(ActionProjectDelete), "mutating a copy leaked into %s", role)
		}
	}
}

func TestCanPerformWithoutRole(t *testing.T) {
	for _, a := range Actions() {
		assert.False(t, CanPerform("", a))
	}
	assert.Empty(t, AllowedActions("ghost"))
}

func TestCanPerformUnknownActionPanics(t *testing.T) {
	assert.Panics(t, func() { CanPerform(RoleManager, Action("crane:operate")) })
}

func TestMustBuildMatrixRejectsGaps(t *testing.T) {
	assert.Panics(t, func() {
		mustBuildMatrix(map[ProjectRole][]Action{RoleManager: Actions()})
	})

	grants := map[ProjectRole][]Action{}
	for _, role := range ProjectRoles() {
		grants[role] = nil
	}
	grants[RoleManager] = []Action{ActionRFICreate}
	assert.Panics(t, func() { mustBuildMatrix(grants) })
}

func TestCanEditFlag(t *testing.T) {
	editors := map[ProjectRole]bool{
		RoleManager: true, RoleSuperintendent: true, RoleForeman: true, RoleEngineer: true,
		RoleContractor: false, RoleInspector: false, RoleOwner: false,
	}
	for role, want := range editors {
		assert.Equal(t, want, NewMembership(uuidA, uuidB, role).CanEdit, role)
	}
}

func TestParseProjectRole(t *testing.T) {
	role, err := ParseProjectRole(" Engineer ")
	require.NoError(t, err)
	assert.Equal(t, RoleEngineer, role)

	_, err = ParseProjectRole("architect")
	require.Error(t, err)
}
