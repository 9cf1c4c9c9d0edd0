package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/enums"
)

// Task is a household task, optionally nested one level under a parent task
// in the same family.
type Task struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FamilyID    uuid.UUID        `gorm:"column:family_id;type:uuid;not null;index"`
	Title       string           `gorm:"column:title;not null"`
	Description *string          `gorm:"column:description"`
	DueDate     *time.Time       `gorm:"column:due_date;type:date"`
	DueTime     *string          `gorm:"column:due_time"`
	AssignedTo  *uuid.UUID       `gorm:"column:assigned_to;type:uuid"`
	Status      enums.TaskStatus `gorm:"column:status;type:task_status;not null;default:'TODO'"`
	ParentID    *uuid.UUID       `gorm:"column:parent_id;type:uuid;index"`
	CreatedBy   uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
