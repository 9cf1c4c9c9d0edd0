package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

const timeLayout = "15:04"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type taskRepository interface {
	Create(ctx context.Context, dto CreateTaskDTO) (*models.Task, error)
	FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Task, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Task, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	Save(ctx context.Context, task *models.Task) error
}

type txTaskRepository interface {
	DeleteWithChildren(ctx context.Context, familyID, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes task operations.
type Service interface {
	List(ctx context.Context, userID, familyID uuid.UUID, filter Filter) (*TaskListView, error)
	GetByID(ctx context.Context, userID, familyID, taskID uuid.UUID) (*TaskDTO, error)
	Create(ctx context.Context, userID, familyID uuid.UUID, input TaskInput) (*TaskDTO, error)
	Replace(ctx context.Context, userID, familyID, taskID uuid.UUID, input TaskInput) (*TaskDTO, error)
	CycleStatus(ctx context.Context, userID, familyID, taskID uuid.UUID) (*TaskDTO, error)
	Delete(ctx context.Context, userID, familyID, taskID uuid.UUID) error
}

// ServiceParams packages the dependencies for the task service.
type ServiceParams struct {
	TxRunner        txRunner
	Repo            taskRepository
	Memberships     membershipsRepository
	TaskRepoFactory func(tx *gorm.DB) txTaskRepository
	Now             func() time.Time
}

type service struct {
	tx          txRunner
	repo        taskRepository
	memberships membershipsRepository
	taskRepo    func(tx *gorm.DB) txTaskRepository
	now         func() time.Time
}

// NewService builds a task service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("task repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}

	taskFactory := params.TaskRepoFactory
	if taskFactory == nil {
		taskFactory = func(tx *gorm.DB) txTaskRepository {
			return NewRepository(tx)
		}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		tx:          params.TxRunner,
		repo:        params.Repo,
		memberships: params.Memberships,
		taskRepo:    taskFactory,
		now:         now,
	}, nil
}

// TaskInput is the full write shape for a task. Replace treats it as the
// complete next state of the record, not a patch.
type TaskInput struct {
	Title       string
	Description *string
	DueDate     *string
	DueTime     *string
	AssignedTo  *uuid.UUID
	Status      enums.TaskStatus
	ParentID    *uuid.UUID
}

func (s *service) List(ctx context.Context, userID, familyID uuid.UUID, filter Filter) (*TaskListView, error) {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tasks")
	}

	view := BuildListView(rows, filter, s.now())
	return &view, nil
}

func (s *service) GetByID(ctx context.Context, userID, familyID, taskID uuid.UUID) (*TaskDTO, error) {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	task, err := s.loadTask(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}
	return FromModel(task, s.now()), nil
}

func (s *service) Create(ctx context.Context, userID, familyID uuid.UUID, input TaskInput) (*TaskDTO, error) {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	fields, err := s.validateInput(ctx, familyID, uuid.Nil, input)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Create(ctx, CreateTaskDTO{
		FamilyID:    familyID,
		Title:       fields.title,
		Description: input.Description,
		DueDate:     fields.dueDate,
		DueTime:     input.DueTime,
		AssignedTo:  input.AssignedTo,
		Status:      fields.status,
		ParentID:    input.ParentID,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create task")
	}
	return FromModel(task, s.now()), nil
}

// Replace overwrites every mutable field of the task with the provided input.
// Fields absent from the input are cleared, not preserved.
func (s *service) Replace(ctx context.Context, userID, familyID, taskID uuid.UUID, input TaskInput) (*TaskDTO, error) {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	task, err := s.loadTask(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}

	fields, err := s.validateInput(ctx, familyID, taskID, input)
	if err != nil {
		return nil, err
	}

	// A task with sub-tasks cannot itself become a sub-task.
	if input.ParentID != nil {
		children, err := s.repo.CountChildren(ctx, taskID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sub-tasks")
		}
		if children > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a task with sub-tasks cannot be nested")
		}
	}

	task.Title = fields.title
	task.Description = input.Description
	task.DueDate = fields.dueDate
	task.DueTime = input.DueTime
	task.AssignedTo = input.AssignedTo
	task.Status = fields.status
	task.ParentID = input.ParentID

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save task")
	}
	return FromModel(task, s.now()), nil
}

// CycleStatus advances the task through TODO -> DOING -> DONE -> TODO.
// Moving an unassigned task into DOING assigns it to the acting user.
func (s *service) CycleStatus(ctx context.Context, userID, familyID, taskID uuid.UUID) (*TaskDTO, error) {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	task, err := s.loadTask(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = task.Status.Next()
	if task.Status == enums.TaskStatusDoing && task.AssignedTo == nil {
		assignee := userID
		task.AssignedTo = &assignee
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save task")
	}
	return FromModel(task, s.now()), nil
}

// Delete removes the task together with its direct sub-tasks.
func (s *service) Delete(ctx context.Context, userID, familyID, taskID uuid.UUID) error {
	if _, err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return err
	}

	if _, err := s.loadTask(ctx, familyID, taskID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.taskRepo(tx).DeleteWithChildren(ctx, familyID, taskID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete task")
		}
		return nil
	})
}

type validatedFields struct {
	title   string
	status  enums.TaskStatus
	dueDate *time.Time
}

func (s *service) validateInput(ctx context.Context, familyID, taskID uuid.UUID, input TaskInput) (*validatedFields, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task title is required")
	}

	status := input.Status
	if status == "" {
		status = enums.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status")
	}

	var dueDate *time.Time
	if input.DueDate != nil {
		parsed, err := time.ParseInLocation(DateLayout, *input.DueDate, time.UTC)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_date must be formatted YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	if input.DueTime != nil {
		if _, err := time.Parse(timeLayout, *input.DueTime); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_time must be formatted HH:MM")
		}
	}

	if input.ParentID != nil {
		if taskID != uuid.Nil && *input.ParentID == taskID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a task cannot be its own parent")
		}

		parent, err := s.repo.FindByID(ctx, familyID, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent task not found in this family")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent task")
		}
		// Sub-tasks nest exactly one level deep.
		if parent.ParentID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-tasks cannot have their own sub-tasks")
		}
	}

	return &validatedFields{title: title, status: status, dueDate: dueDate}, nil
}

func (s *service) loadTask(ctx context.Context, familyID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, familyID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load task")
	}
	return task, nil
}

func (s *service) requireRole(ctx context.Context, userID, familyID uuid.UUID, minRole enums.FamilyRole) (*models.FamilyMembership, error) {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(minRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return membership, nil
}
