package models

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingList owns many shopping items; deleting a list cascades item deletion.
type ShoppingList struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FamilyID  uuid.UUID `gorm:"column:family_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
