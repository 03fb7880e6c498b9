package rbac

import "fmt"

// roleGrants is the source table of the role-action matrix. Manager holds
// every action.
var roleGrants = map[ProjectRole][]Action{
	RoleManager: Actions(),
	RoleSuperintendent: {
		ActionProjectEdit,
		ActionSubmittalCreate, ActionSubmittalEdit, ActionSubmittalReview,
		ActionRFICreate, ActionRFIRespond, ActionRFIClose,
		ActionDailyLogCreate, ActionDailyLogEdit,
		ActionPunchListCreate, ActionPunchListResolve, ActionPunchListVerify,
		ActionMilestoneCreate, ActionMilestoneUpdate,
	},
	RoleForeman: {
		ActionSubmittalCreate,
		ActionRFICreate,
		ActionDailyLogCreate, ActionDailyLogEdit,
		ActionPunchListCreate, ActionPunchListResolve,
	},
	RoleEngineer: {
		ActionSubmittalCreate, ActionSubmittalEdit, ActionSubmittalReview,
		ActionRFICreate, ActionRFIRespond, ActionRFIClose,
		ActionDailyLogCreate,
		ActionPunchListCreate,
		ActionMilestoneUpdate,
	},
	RoleContractor: {
		ActionSubmittalCreate, ActionSubmittalEdit,
		ActionRFICreate,
		ActionDailyLogCreate,
		ActionPunchListResolve,
	},
	RoleInspector: {
		ActionRFICreate,
		ActionDailyLogCreate,
		ActionPunchListCreate, ActionPunchListVerify,
	},
	RoleOwner: {
		ActionRFICreate,
	},
}

var matrix = mustBuildMatrix(roleGrants)

// mustBuildMatrix panics unless every role has an entry, every granted action
// is known, and every action is granted to at least one role.
func mustBuildMatrix(grants map[ProjectRole][]Action) map[ProjectRole]ActionSet {
	built := make(map[ProjectRole]ActionSet, len(grants))
	reachable := make(map[Action]bool)
	for _, role := range ProjectRoles() {
		actions, ok := grants[role]
		if !ok {
			panic(fmt.Sprintf("rbac: role %q missing from matrix", role))
		}
		set := make(ActionSet, len(actions))
		for _, a := range actions {
			if !a.IsValid() {
				panic(fmt.Sprintf("rbac: role %q grants unknown action %q", role, a))
			}
			set[a] = struct{}{}
			reachable[a] = true
		}
		built[role] = set
	}
	if len(grants) != len(built) {
		panic("rbac: matrix contains roles outside the project role enumeration")
	}
	for _, a := range Actions() {
		if !reachable[a] {
			panic(fmt.Sprintf("rbac: action %q is not granted to any role", a))
		}
	}
	return built
}

// AllowedActions returns the actions granted to role. Unknown roles yield an
// empty set.
func AllowedActions(role ProjectRole) ActionSet {
	set, ok := matrix[role]
	if !ok {
		return ActionSet{}
	}
	return set.clone()
}

// CanPerform reports whether role is granted action. The empty role (no
// membership) is never granted anything. Unknown actions are a programming
// error and panic.
func CanPerform(role ProjectRole, action Action) bool {
	mustKnowAction(action)
	set, ok := matrix[role]
	if !ok {
		return false
	}
	return set.Has(action)
}

func mustKnowAction(action Action) {
	if !action.IsValid() {
		panic(fmt.Sprintf("rbac: unknown action %q", action))
	}
}
