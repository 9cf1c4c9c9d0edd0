package models

import (
	"time"

	"github.com/google/uuid"
)

// Family represents the canonical tenant model. Every domain row is scoped to
// exactly one family.
type Family struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Family) TableName() string { return "families" }
