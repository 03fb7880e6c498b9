// Package rfis handles requests for information raised on site and answered
// by the design team.
package rfis

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks an RFI.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the lifecycle state of an RFI.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAnswered Status = "answered"
	StatusClosed   Status = "closed"
	StatusOverdue  Status = "overdue"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusAnswered, StatusClosed, StatusOverdue:
		return true
	default:
		return false
	}
}

// AwaitsAnswer reports whether an official response moves the RFI to answered.
func (s Status) AwaitsAnswer() bool {
	return s == StatusOpen || s == StatusOverdue
}

// RFI is a numbered question within a project.
type RFI struct {
	ID         uuid.UUID  `json:"id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	Number     string     `json:"number"`
	Subject    string     `json:"subject"`
	Question   string     `json:"question"`
	Priority   Priority   `json:"priority"`
	Status     Status     `json:"status"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	ClosedBy   *uuid.UUID `json:"closed_by,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Response is a reply on an RFI thread. Official responses answer the RFI.
type Response struct {
	ID        uuid.UUID `json:"id"`
	RFIID     uuid.UUID `json:"rfi_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Body      string    `json:"body"`
	Official  bool      `json:"official"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is an RFI with its response thread, oldest first.
type Detail struct {
	RFI
	Responses []Response `json:"responses"`
}

// CreateRequest is the payload for CreateRFI.
type CreateRequest struct {
	Subject    string     `json:"subject" validate:"required,max=200"`
	Question   string     `json:"question" validate:"required,max=8000"`
	Priority   string     `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	AssignedTo *uuid.UUID `json:"assigned_to"`
	DueDate    *string    `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignRequest is the payload for AssignRFI.
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ResponseRequest is the payload for AddResponse.
type ResponseRequest struct {
	Body     string `json:"body" validate:"required,max=8000"`
	Official bool   `json:"official"`
}

// ListFilter narrows ListRFIs.
type ListFilter struct {
	Status Status
}
