// Package activity keeps the append-only project activity trail.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// EntityType names the kind of record an entry describes.
type EntityType string

const (
	EntityProject       EntityType = "project"
	EntityMember        EntityType = "member"
	EntitySubmittal     EntityType = "submittal"
	EntityRFI           EntityType = "rfi"
	EntityDailyLog      EntityType = "daily_log"
	EntityPunchListItem EntityType = "punch_list_item"
	EntityMilestone     EntityType = "milestone"
)

// IsValid reports whether t is a known entity type.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityProject, EntityMember, EntitySubmittal, EntityRFI, EntityDailyLog, EntityPunchListItem, EntityMilestone:
		return true
	default:
		return false
	}
}

// Verb is the closed set of activity actions.
type Verb string

const (
	VerbCreated       Verb = "created"
	VerbUpdated       Verb = "updated"
	VerbStatusChanged Verb = "status_changed"
	VerbCommented     Verb = "commented"
	VerbApproved      Verb = "approved"
	VerbRejected      Verb = "rejected"
	VerbSubmitted     Verb = "submitted"
	VerbAssigned      Verb = "assigned"
)

// IsValid reports whether v is a known verb.
func (v Verb) IsValid() bool {
	switch v {
	case VerbCreated, VerbUpdated, VerbStatusChanged, VerbCommented, VerbApproved, VerbRejected, VerbSubmitted, VerbAssigned:
		return true
	default:
		return false
	}
}

// Entry is one immutable activity record. A nil ActorID marks a system entry.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	Seq         int64      `json:"seq"`
	ProjectID   uuid.UUID  `json:"project_id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    uuid.UUID  `json:"entity_id"`
	Action      Verb       `json:"action"`
	Description string     `json:"description"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewEntry builds an entry attributed to actorID. uuid.Nil yields a system entry.
func NewEntry(projectID uuid.UUID, entityType EntityType, entityID uuid.UUID, verb Verb, description string, actorID uuid.UUID) Entry {
	e := Entry{
		ProjectID:   projectID,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      verb,
		Description: description,
	}
	if actorID != uuid.Nil {
		id := actorID
		e.ActorID = &id
	}
	return e
}
