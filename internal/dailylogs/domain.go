// Package dailylogs records one site diary entry per project per day.
package dailylogs

import (
	"time"

	"github.com/google/uuid"
)

// DailyLog is the field record for a single working day.
type DailyLog struct {
	ID              uuid.UUID `json:"id"`
	ProjectID       uuid.UUID `json:"project_id"`
	LogDate         time.Time `json:"log_date"`
	Weather         string    `json:"weather"`
	TemperatureHigh *int      `json:"temperature_high,omitempty"`
	TemperatureLow  *int      `json:"temperature_low,omitempty"`
	CrewCount       int       `json:"crew_count"`
	WorkPerformed   string    `json:"work_performed"`
	Delays          string    `json:"delays"`
	SafetyNotes     string    `json:"safety_notes"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRequest is the input for CreateDailyLog.
type CreateRequest struct {
	LogDate         string `json:"log_date" validate:"required,datetime=2006-01-02"`
	Weather         string `json:"weather" validate:"max=200"`
	TemperatureHigh *int   `json:"temperature_high"`
	TemperatureLow  *int   `json:"temperature_low"`
	CrewCount       int    `json:"crew_count" validate:"min=0"`
	WorkPerformed   string `json:"work_performed" validate:"required,max=8000"`
	Delays          string `json:"delays" validate:"max=4000"`
	SafetyNotes     string `json:"safety_notes" validate:"max=4000"`
}

// UpdateRequest changes a log. Nil fields are left untouched; the log date
// is fixed once recorded.
type UpdateRequest struct {
	Weather         *string `json:"weather" validate:"omitempty,max=200"`
	TemperatureHigh *int    `json:"temperature_high"`
	TemperatureLow  *int    `json:"temperature_low"`
	CrewCount       *int    `json:"crew_count" validate:"omitempty,min=0"`
	WorkPerformed   *string `json:"work_performed" validate:"omitempty,max=8000"`
	Delays          *string `json:"delays" validate:"omitempty,max=4000"`
	SafetyNotes     *string `json:"safety_notes" validate:"omitempty,max=4000"`
}

// Range bounds a log listing. Either end may be open.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) contains(day time.Time) bool {
	if r.From != nil && day.Before(*r.From) {
		return false
	}
	if r.To != nil && day.After(*r.To) {
		return false
	}
	return true
}
