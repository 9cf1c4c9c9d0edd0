package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// TaskDTO is the transport shape for a task.
type TaskDTO struct {
	ID          uuid.UUID        `json:"id"`
	FamilyID    uuid.UUID        `json:"family_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	DueDate     *string          `json:"due_date,omitempty"`
	DueTime     *string          `json:"due_time,omitempty"`
	AssignedTo  *uuid.UUID       `json:"assigned_to,omitempty"`
	Status      enums.TaskStatus `json:"status"`
	ParentID    *uuid.UUID       `json:"parent_id,omitempty"`
	CreatedBy   uuid.UUID        `json:"created_by"`
	IsOverdue   bool             `json:"is_overdue"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TaskGroup nests a parent task with its direct sub-tasks.
type TaskGroup struct {
	Task     TaskDTO   `json:"task"`
	SubTasks []TaskDTO `json:"sub_tasks"`
}

// TaskListView is the result of listing tasks: grouped rows plus the
// derived next-up pointer.
type TaskListView struct {
	Groups []TaskGroup `json:"groups"`
	NextUp *TaskDTO    `json:"next_up,omitempty"`
}

// CreateTaskDTO holds the data required by the repo to persist a new task.
type CreateTaskDTO struct {
	FamilyID    uuid.UUID
	Title       string
	Description *string
	DueDate     *time.Time
	DueTime     *string
	AssignedTo  *uuid.UUID
	Status      enums.TaskStatus
	ParentID    *uuid.UUID
	CreatedBy   uuid.UUID
}

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// FromModel converts a task model to its DTO, deriving the overdue flag
// against the provided day.
func FromModel(t *models.Task, today time.Time) *TaskDTO {
	if t == nil {
		return nil
	}

	var dueDate *string
	if t.DueDate != nil {
		formatted := t.DueDate.Format(DateLayout)
		dueDate = &formatted
	}

	return &TaskDTO{
		ID:          t.ID,
		FamilyID:    t.FamilyID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     dueDate,
		DueTime:     t.DueTime,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
		ParentID:    t.ParentID,
		CreatedBy:   t.CreatedBy,
		IsOverdue:   IsOverdue(t, today),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (c CreateTaskDTO) ToModel() *models.Task {
	status := c.Status
	if status == "" {
		status = enums.TaskStatusTodo
	}

	return &models.Task{
		FamilyID:    c.FamilyID,
		Title:       c.Title,
		Description: c.Description,
		DueDate:     c.DueDate,
		DueTime:     c.DueTime,
		AssignedTo:  c.AssignedTo,
		Status:      status,
		ParentID:    c.ParentID,
		CreatedBy:   c.CreatedBy,
	}
}
