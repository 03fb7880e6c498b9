// Package projects manages construction projects and their team rosters.
package projects

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// IsValid reports whether s is a known project status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// Project is a construction job site.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Status      Status     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProjectRequest is the payload for CreateProject.
type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Code        string  `json:"code" validate:"max=40"`
	Description string  `json:"description" validate:"max=4000"`
	Location    string  `json:"location" validate:"max=200"`
	StartDate   *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest patches a project; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code        *string `json:"code" validate:"omitempty,max=40"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Status      *string `json:"status" validate:"omitempty,oneof=active on_hold completed"`
	StartDate   *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// AddMemberRequest is the payload for AddProjectMember.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required"`
}

// UpdateMemberRoleRequest is the payload for UpdateMemberRole.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}
