// Package punchlist tracks deficiency items raised near project closeout.
package punchlist

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks an item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the lifecycle state of an item.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusVerified   Status = "verified"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusVerified:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Reopening is allowed from every other status.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return false
	}
	switch next {
	case StatusOpen:
		return true
	case StatusInProgress:
		return s == StatusOpen
	case StatusResolved:
		return s == StatusOpen || s == StatusInProgress
	case StatusVerified:
		return s == StatusResolved
	default:
		return false
	}
}

// Item is a numbered punch-list entry.
type Item struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	Number          string     `json:"number"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	ResolutionNotes string     `json:"resolution_notes"`
	ResolvedBy      *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	VerifiedBy      *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRequest is the payload for CreateItem.
type CreateRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=4000"`
	Location    string     `json:"location" validate:"max=200"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	DueDate     *string    `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignRequest is the payload for AssignItem.
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// StatusRequest is the payload for UpdateItemStatus.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved verified"`
	Notes  string `json:"notes" validate:"max=4000"`
}

// ListFilter narrows ListItems.
type ListFilter struct {
	Status     Status
	AssignedTo *uuid.UUID
}
