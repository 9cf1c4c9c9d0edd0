package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// Repository handles task persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to task operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new task row.
func (r *Repository) Create(ctx context.Context, dto CreateTaskDTO) (*models.Task, error) {
	task := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// FindByID loads a task by its UUID scoped to the family.
func (r *Repository) FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByFamily returns every task in the family in creation order.
func (r *Repository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountChildren reports how many direct sub-tasks a task has.
func (r *Repository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the full task row back.
func (r *Repository) Save(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// DeleteWithChildren removes a task and its direct sub-tasks.
func (r *Repository) DeleteWithChildren(ctx context.Context, familyID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND parent_id = ?", familyID, id).
		Delete(&models.Task{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		Delete(&models.Task{}).Error
}

// DeleteDoneBefore purges DONE tasks last touched before the cutoff and
// returns how many rows were removed.
func (r *Repository) DeleteDoneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.TaskStatusDone, cutoff).
		Delete(&models.Task{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
