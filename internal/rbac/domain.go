package rbac

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// ProjectRole governs project-scoped actions.
type ProjectRole string

const (
	RoleManager        ProjectRole = "manager"
	RoleSuperintendent ProjectRole = "superintendent"
	RoleForeman        ProjectRole = "foreman"
	RoleEngineer       ProjectRole = "engineer"
	RoleContractor     ProjectRole = "contractor"
	RoleInspector      ProjectRole = "inspector"
	RoleOwner          ProjectRole = "owner"
)

// ProjectRoles lists every project role.
func ProjectRoles() []ProjectRole {
	return []ProjectRole{
		RoleManager,
		RoleSuperintendent,
		RoleForeman,
		RoleEngineer,
		RoleContractor,
		RoleInspector,
		RoleOwner,
	}
}

// IsValid reports whether r is one of the project roles.
func (r ProjectRole) IsValid() bool {
	switch r {
	case RoleManager, RoleSuperintendent, RoleForeman, RoleEngineer, RoleContractor, RoleInspector, RoleOwner:
		return true
	default:
		return false
	}
}

// CanEdit is the derived "can edit" flag carried by memberships.
func (r ProjectRole) CanEdit() bool {
	switch r {
	case RoleManager, RoleSuperintendent, RoleForeman, RoleEngineer:
		return true
	default:
		return false
	}
}

// ParseProjectRole validates raw input as a project role.
func ParseProjectRole(raw string) (ProjectRole, error) {
	role := ProjectRole(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", shared.NewValidationError("role", "must be one of manager, superintendent, foreman, engineer, contractor, inspector, owner")
	}
	return role, nil
}

// GlobalRole is the actor-wide role, independent of any project.
type GlobalRole string

const (
	GlobalAdmin   GlobalRole = "admin"
	GlobalManager GlobalRole = "manager"
	GlobalMember  GlobalRole = "member"
	GlobalViewer  GlobalRole = "viewer"
)

// IsValid reports whether g is one of the global roles.
func (g GlobalRole) IsValid() bool {
	switch g {
	case GlobalAdmin, GlobalManager, GlobalMember, GlobalViewer:
		return true
	default:
		return false
	}
}

// Profile is the backing record of an authenticated identity.
type Profile struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	GlobalRole GlobalRole `json:"global_role"`
}

// Membership ties one actor to one project with exactly one role.
type Membership struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      ProjectRole `json:"role"`
	CanEdit   bool        `json:"can_edit"`
	// Implicit marks a membership synthesized for a global admin without a row.
	Implicit  bool      `json:"implicit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMembership builds a membership with the derived CanEdit flag.
func NewMembership(projectID, userID uuid.UUID, role ProjectRole) Membership {
	return Membership{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CanEdit:   role.CanEdit(),
	}
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	// Reason is one of the shared denial errors when Allowed is false.
	Reason     error
	Bypass     bool
	GlobalRole GlobalRole
	Membership *Membership
}

// Actor is the authorized caller handed back to mutation services.
type Actor struct {
	ID         uuid.UUID
	GlobalRole GlobalRole
	Membership *Membership
	Bypass     bool
}
