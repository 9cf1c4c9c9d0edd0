package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// EventDTO is the transport shape for a calendar event.
type EventDTO struct {
	ID        uuid.UUID  `json:"id"`
	FamilyID  uuid.UUID  `json:"family_id"`
	Title     string     `json:"title"`
	Notes     *string    `json:"notes,omitempty"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateEventDTO holds the data required by the repo to persist a new event.
type CreateEventDTO struct {
	FamilyID  uuid.UUID
	Title     string
	Notes     *string
	StartAt   time.Time
	EndAt     *time.Time
	CreatedBy uuid.UUID
}

func FromModel(e *models.Event) *EventDTO {
	if e == nil {
		return nil
	}

	return &EventDTO{
		ID:        e.ID,
		FamilyID:  e.FamilyID,
		Title:     e.Title,
		Notes:     e.Notes,
		StartAt:   e.StartAt,
		EndAt:     e.EndAt,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (c CreateEventDTO) ToModel() *models.Event {
	return &models.Event{
		FamilyID:  c.FamilyID,
		Title:     c.Title,
		Notes:     c.Notes,
		StartAt:   c.StartAt,
		EndAt:     c.EndAt,
		CreatedBy: c.CreatedBy,
	}
}
