// Package submittals tracks shop drawings, product data and samples sent for
// design-team review.
package submittals

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a submittal.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusConditional Status = "conditional"
	StatusRejected    Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusConditional, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusConditional, StatusRejected},
	StatusConditional: {StatusSubmitted},
	StatusRejected:    {StatusSubmitted},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusConditional, StatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether content fields may change in this status.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusConditional || s == StatusRejected
}

// IsReviewOutcome reports whether s records a reviewer decision.
func (s Status) IsReviewOutcome() bool {
	return s == StatusApproved || s == StatusConditional || s == StatusRejected
}

// Submittal is a numbered review package within a project.
type Submittal struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Number      string     `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	SpecSection string     `json:"spec_section"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	SubmittedBy *uuid.UUID `json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequest is the payload for CreateSubmittal.
type CreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=4000"`
	SpecSection string  `json:"spec_section" validate:"max=50"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateRequest patches content fields; nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	SpecSection *string `json:"spec_section" validate:"omitempty,max=50"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// StatusRequest is the payload for UpdateSubmittalStatus.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted under_review approved conditional rejected"`
	Notes  string `json:"notes" validate:"max=4000"`
}

// ListFilter narrows ListSubmittals.
type ListFilter struct {
	Status Status
}
