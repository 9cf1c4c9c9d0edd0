package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

func setupTasksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  family_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  due_date DATE,
  due_time TEXT,
  assigned_to TEXT,
  status TEXT NOT NULL DEFAULT 'TODO',
  parent_id TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, gdb.Exec(schema).Error)
	return gdb
}

func seedTask(t *testing.T, gdb *gorm.DB, task *models.Task) *models.Task {
	t.Helper()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	require.NoError(t, gdb.Create(task).Error)
	return task
}

func TestRepositoryFindByIDScopedToFamily(t *testing.T) {
	gdb := setupTasksTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	familyID := uuid.New()
	otherFamily := uuid.New()
	task := seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "Water the plants",
		Status:    enums.TaskStatusTodo,
		CreatedBy: uuid.New(),
	})

	found, err := repo.FindByID(ctx, familyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)
	assert.Equal(t, "Water the plants", found.Title)

	_, err = repo.FindByID(ctx, otherFamily, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByFamilyOrdersByCreation(t *testing.T) {
	gdb := setupTasksTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	familyID := uuid.New()
	creator := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		seedTask(t, gdb, &models.Task{
			FamilyID:  familyID,
			Title:     title,
			Status:    enums.TaskStatusTodo,
			CreatedBy: creator,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	seedTask(t, gdb, &models.Task{
		FamilyID:  uuid.New(),
		Title:     "someone else's chore",
		Status:    enums.TaskStatusTodo,
		CreatedBy: creator,
	})

	listed, err := repo.ListByFamily(ctx, familyID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "first", listed[0].Title)
	assert.Equal(t, "third", listed[2].Title)
}

func TestRepositoryDeleteWithChildren(t *testing.T) {
	gdb := setupTasksTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	familyID := uuid.New()
	creator := uuid.New()
	parent := seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "Clean the garage",
		Status:    enums.TaskStatusTodo,
		CreatedBy: creator,
	})
	seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "Sort the shelves",
		Status:    enums.TaskStatusTodo,
		ParentID:  &parent.ID,
		CreatedBy: creator,
	})

	count, err := repo.CountChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteWithChildren(ctx, familyID, parent.ID))

	var remaining int64
	require.NoError(t, gdb.Model(&models.Task{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

func TestRepositoryDeleteDoneBefore(t *testing.T) {
	gdb := setupTasksTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	familyID := uuid.New()
	creator := uuid.New()
	old := time.Now().UTC().Add(-48 * time.Hour)
	seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "stale done chore",
		Status:    enums.TaskStatusDone,
		CreatedBy: creator,
		UpdatedAt: old,
	})
	fresh := seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "recent done chore",
		Status:    enums.TaskStatusDone,
		CreatedBy: creator,
	})
	open := seedTask(t, gdb, &models.Task{
		FamilyID:  familyID,
		Title:     "still open",
		Status:    enums.TaskStatusTodo,
		CreatedBy: creator,
		UpdatedAt: old,
	})

	removed, err := repo.DeleteDoneBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var titles []string
	require.NoError(t, gdb.Model(&models.Task{}).Order("title ASC").Pluck("title", &titles).Error)
	assert.Equal(t, []string{fresh.Title, open.Title}, titles)
}
