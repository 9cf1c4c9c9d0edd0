package models

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingItem is a single line on a shopping list.
type ShoppingItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListID    uuid.UUID `gorm:"column:list_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	IsDone    bool      `gorm:"column:is_done;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
