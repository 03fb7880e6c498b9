// Package milestones tracks schedule milestones and their completion.
package milestones

import (
	"time"

	"github.com/google/uuid"
)

// Status is the progress state of a milestone.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusDelayed    Status = "delayed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusComplete, StatusDelayed:
		return true
	default:
		return false
	}
}

// Milestone is a dated checkpoint on the project schedule.
type Milestone struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	TargetDate      time.Time  `json:"target_date"`
	ActualDate      *time.Time `json:"actual_date,omitempty"`
	Status          Status     `json:"status"`
	PercentComplete int        `json:"percent_complete"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRequest is the input for CreateMilestone.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	TargetDate  string `json:"target_date" validate:"required,datetime=2006-01-02"`
}

// UpdateRequest changes a milestone. Nil fields are left untouched.
type UpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=4000"`
	TargetDate      *string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	ActualDate      *string `json:"actual_date" validate:"omitempty,datetime=2006-01-02"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending in_progress complete delayed"`
	PercentComplete *int    `json:"percent_complete" validate:"omitempty,min=0,max=100"`
}
