package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTaskRepo struct {
	tasks map[uuid.UUID]*models.Task

	deletedWithChildren []uuid.UUID
	saveErr             error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: map[uuid.UUID]*models.Task{}}
}

func (s *stubTaskRepo) add(task *models.Task) *models.Task {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	s.tasks[task.ID] = task
	return task
}

func (s *stubTaskRepo) Create(ctx context.Context, dto CreateTaskDTO) (*models.Task, error) {
	task := dto.ToModel()
	task.ID = uuid.New()
	s.tasks[task.ID] = task
	return task, nil
}

func (s *stubTaskRepo) FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Task, error) {
	if task, ok := s.tasks[id]; ok && task.FamilyID == familyID {
		cpy := *task
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTaskRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Task, error) {
	var out []models.Task
	for _, task := range s.tasks {
		if task.FamilyID == familyID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (s *stubTaskRepo) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	for _, task := range s.tasks {
		if task.ParentID != nil && *task.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (s *stubTaskRepo) Save(ctx context.Context, task *models.Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *stubTaskRepo) DeleteWithChildren(ctx context.Context, familyID, id uuid.UUID) error {
	s.deletedWithChildren = append(s.deletedWithChildren, id)
	for childID, task := range s.tasks {
		if task.ParentID != nil && *task.ParentID == id {
			delete(s.tasks, childID)
		}
	}
	delete(s.tasks, id)
	return nil
}

type stubMembershipRepo struct {
	members map[uuid.UUID]enums.FamilyRole
}

func newStubMembershipRepo() *stubMembershipRepo {
	return &stubMembershipRepo{members: map[uuid.UUID]enums.FamilyRole{}}
}

func (s *stubMembershipRepo) GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error) {
	if role, ok := s.members[userID]; ok {
		return &models.FamilyMembership{
			ID:       uuid.New(),
			FamilyID: familyID,
			UserID:   userID,
			Role:     role,
		}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type taskTestSetup struct {
	service    Service
	repo       *stubTaskRepo
	memberRepo *stubMembershipRepo
	familyID   uuid.UUID
	member     uuid.UUID
}

func newTaskTestSetup(t *testing.T) *taskTestSetup {
	t.Helper()
	repo := newStubTaskRepo()
	memberRepo := newStubMembershipRepo()
	member := uuid.New()
	memberRepo.members[member] = enums.FamilyRoleMember

	svc, err := NewService(ServiceParams{
		TxRunner:    stubTxRunner{},
		Repo:        repo,
		Memberships: memberRepo,
		TaskRepoFactory: func(tx *gorm.DB) txTaskRepository {
			return repo
		},
		Now: func() time.Time {
			return time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("new task service: %v", err)
	}
	return &taskTestSetup{
		service:    svc,
		repo:       repo,
		memberRepo: memberRepo,
		familyID:   uuid.New(),
		member:     member,
	}
}

func TestCreateTaskDefaultsToTodo(t *testing.T) {
	setup := newTaskTestSetup(t)

	dto, err := setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{Title: "laundry"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if dto.Status != enums.TaskStatusTodo {
		t.Fatalf("expected TODO status, got %s", dto.Status)
	}
	if dto.CreatedBy != setup.member {
		t.Fatal("expected creator to be recorded")
	}
}

func TestCreateTaskViewerForbidden(t *testing.T) {
	setup := newTaskTestSetup(t)
	viewer := uuid.New()
	setup.memberRepo.members[viewer] = enums.FamilyRoleViewer

	_, err := setup.service.Create(context.Background(), viewer, setup.familyID, TaskInput{Title: "laundry"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestCreateTaskRejectsUnknownParent(t *testing.T) {
	setup := newTaskTestSetup(t)
	missing := uuid.New()

	_, err := setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{
		Title:    "vacuum",
		ParentID: &missing,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTaskRejectsParentInOtherFamily(t *testing.T) {
	setup := newTaskTestSetup(t)
	foreign := setup.repo.add(&models.Task{FamilyID: uuid.New(), Title: "other", Status: enums.TaskStatusTodo})

	_, err := setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{
		Title:    "vacuum",
		ParentID: &foreign.ID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTaskRejectsSecondNestingLevel(t *testing.T) {
	setup := newTaskTestSetup(t)
	parent := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "clean", Status: enums.TaskStatusTodo})
	child := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "vacuum", Status: enums.TaskStatusTodo, ParentID: &parent.ID})

	_, err := setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{
		Title:    "vacuum corners",
		ParentID: &child.ID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTaskValidatesDueFormats(t *testing.T) {
	setup := newTaskTestSetup(t)

	badDate := "15-03-2026"
	_, err := setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{
		Title:   "laundry",
		DueDate: &badDate,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for date, got %v", err)
	}

	goodDate := "2026-03-20"
	badTime := "9pm"
	_, err = setup.service.Create(context.Background(), setup.member, setup.familyID, TaskInput{
		Title:   "laundry",
		DueDate: &goodDate,
		DueTime: &badTime,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for time, got %v", err)
	}
}

func TestReplaceOverwritesAllFields(t *testing.T) {
	setup := newTaskTestSetup(t)
	desc := "scrub everything"
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	assignee := uuid.New()
	task := setup.repo.add(&models.Task{
		FamilyID:    setup.familyID,
		Title:       "clean",
		Description: &desc,
		DueDate:     &due,
		AssignedTo:  &assignee,
		Status:      enums.TaskStatusDoing,
	})

	dto, err := setup.service.Replace(context.Background(), setup.member, setup.familyID, task.ID, TaskInput{
		Title:  "clean kitchen",
		Status: enums.TaskStatusTodo,
	})
	if err != nil {
		t.Fatalf("replace task: %v", err)
	}
	if dto.Title != "clean kitchen" {
		t.Fatalf("expected new title, got %q", dto.Title)
	}
	if dto.Description != nil || dto.DueDate != nil || dto.AssignedTo != nil {
		t.Fatal("replace must clear fields absent from the input")
	}
	if dto.Status != enums.TaskStatusTodo {
		t.Fatalf("expected TODO status, got %s", dto.Status)
	}
}

func TestReplaceRejectsSelfParent(t *testing.T) {
	setup := newTaskTestSetup(t)
	task := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "loop", Status: enums.TaskStatusTodo})

	_, err := setup.service.Replace(context.Background(), setup.member, setup.familyID, task.ID, TaskInput{
		Title:    "loop",
		ParentID: &task.ID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceRejectsNestingTaskWithChildren(t *testing.T) {
	setup := newTaskTestSetup(t)
	parent := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "clean", Status: enums.TaskStatusTodo})
	setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "vacuum", Status: enums.TaskStatusTodo, ParentID: &parent.ID})
	other := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "errands", Status: enums.TaskStatusTodo})

	_, err := setup.service.Replace(context.Background(), setup.member, setup.familyID, parent.ID, TaskInput{
		Title:    "clean",
		ParentID: &other.ID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCycleStatusAdvances(t *testing.T) {
	setup := newTaskTestSetup(t)
	assignee := uuid.New()
	task := setup.repo.add(&models.Task{
		FamilyID:   setup.familyID,
		Title:      "laundry",
		Status:     enums.TaskStatusTodo,
		AssignedTo: &assignee,
	})

	dto, err := setup.service.CycleStatus(context.Background(), setup.member, setup.familyID, task.ID)
	if err != nil {
		t.Fatalf("cycle status: %v", err)
	}
	if dto.Status != enums.TaskStatusDoing {
		t.Fatalf("expected DOING, got %s", dto.Status)
	}
	if dto.AssignedTo == nil || *dto.AssignedTo != assignee {
		t.Fatal("existing assignee must be preserved")
	}

	dto, err = setup.service.CycleStatus(context.Background(), setup.member, setup.familyID, task.ID)
	if err != nil {
		t.Fatalf("cycle status: %v", err)
	}
	if dto.Status != enums.TaskStatusDone {
		t.Fatalf("expected DONE, got %s", dto.Status)
	}

	dto, err = setup.service.CycleStatus(context.Background(), setup.member, setup.familyID, task.ID)
	if err != nil {
		t.Fatalf("cycle status: %v", err)
	}
	if dto.Status != enums.TaskStatusTodo {
		t.Fatalf("expected cycle back to TODO, got %s", dto.Status)
	}
}

func TestCycleStatusAutoAssignsOnDoing(t *testing.T) {
	setup := newTaskTestSetup(t)
	task := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "laundry", Status: enums.TaskStatusTodo})

	dto, err := setup.service.CycleStatus(context.Background(), setup.member, setup.familyID, task.ID)
	if err != nil {
		t.Fatalf("cycle status: %v", err)
	}
	if dto.AssignedTo == nil || *dto.AssignedTo != setup.member {
		t.Fatal("unassigned task moving to DOING must be assigned to the actor")
	}
}

func TestDeleteCascadesDirectSubTasks(t *testing.T) {
	setup := newTaskTestSetup(t)
	parent := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "clean", Status: enums.TaskStatusTodo})
	child := setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "vacuum", Status: enums.TaskStatusTodo, ParentID: &parent.ID})

	if err := setup.service.Delete(context.Background(), setup.member, setup.familyID, parent.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, ok := setup.repo.tasks[parent.ID]; ok {
		t.Fatal("parent must be deleted")
	}
	if _, ok := setup.repo.tasks[child.ID]; ok {
		t.Fatal("direct sub-task must be deleted with its parent")
	}
}

func TestDeleteMissingTaskNotFound(t *testing.T) {
	setup := newTaskTestSetup(t)

	err := setup.service.Delete(context.Background(), setup.member, setup.familyID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListRequiresMembership(t *testing.T) {
	setup := newTaskTestSetup(t)

	_, err := setup.service.List(context.Background(), uuid.New(), setup.familyID, Filter{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestListViewerAllowed(t *testing.T) {
	setup := newTaskTestSetup(t)
	viewer := uuid.New()
	setup.memberRepo.members[viewer] = enums.FamilyRoleViewer
	setup.repo.add(&models.Task{FamilyID: setup.familyID, Title: "laundry", Status: enums.TaskStatusTodo})

	view, err := setup.service.List(context.Background(), viewer, setup.familyID, Filter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(view.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(view.Groups))
	}
}
