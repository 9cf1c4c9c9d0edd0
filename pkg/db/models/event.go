package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry. There is no recurrence model.
type Event struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FamilyID  uuid.UUID  `gorm:"column:family_id;type:uuid;not null;index"`
	Title     string     `gorm:"column:title;not null"`
	Notes     *string    `gorm:"column:notes"`
	StartAt   time.Time  `gorm:"column:start_at;not null"`
	EndAt     *time.Time `gorm:"column:end_at"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
