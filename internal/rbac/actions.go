package rbac

import "sort"

// Action is an atomic capability token.
type Action string

// Project actions.
const (
	ActionProjectEdit   Action = "project:edit"
	ActionProjectDelete Action = "project:delete"
	ActionTeamManage    Action = "team:manage"
)

// Submittal actions.
const (
	ActionSubmittalCreate Action = "submittal:create"
	ActionSubmittalEdit   Action = "submittal:edit"
	ActionSubmittalReview Action = "submittal:review"
)

// RFI actions.
const (
	ActionRFICreate  Action = "rfi:create"
	ActionRFIRespond Action = "rfi:respond"
	ActionRFIClose   Action = "rfi:close"
)

// Daily log actions.
const (
	ActionDailyLogCreate Action = "daily_log:create"
	ActionDailyLogEdit   Action = "daily_log:edit"
)

// Punch list actions.
const (
	ActionPunchListCreate  Action = "punch_list:create"
	ActionPunchListResolve Action = "punch_list:resolve"
	ActionPunchListVerify  Action = "punch_list:verify"
)

// Milestone actions.
const (
	ActionMilestoneCreate Action = "milestone:create"
	ActionMilestoneUpdate Action = "milestone:update"
)

// Actions lists the closed set of action tokens.
func Actions() []Action {
	return []Action{
		ActionProjectEdit,
		ActionProjectDelete,
		ActionTeamManage,
		ActionSubmittalCreate,
		ActionSubmittalEdit,
		ActionSubmittalReview,
		ActionRFICreate,
		ActionRFIRespond,
		ActionRFIClose,
		ActionDailyLogCreate,
		ActionDailyLogEdit,
		ActionPunchListCreate,
		ActionPunchListResolve,
		ActionPunchListVerify,
		ActionMilestoneCreate,
		ActionMilestoneUpdate,
	}
}

var knownActions = func() map[Action]struct{} {
	set := make(map[Action]struct{})
	for _, a := range Actions() {
		set[a] = struct{}{}
	}
	return set
}()

// IsValid reports whether a belongs to the closed action set.
func (a Action) IsValid() bool {
	_, ok := knownActions[a]
	return ok
}

// ActionSet is a set of actions. Values returned by this package are copies.
type ActionSet map[Action]struct{}

// Has reports membership of a in the set.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Slice returns the actions in lexical order.
func (s ActionSet) Slice() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ActionSet) clone() ActionSet {
	out := make(ActionSet, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}
