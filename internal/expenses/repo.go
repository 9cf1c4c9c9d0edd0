package expenses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// Repository handles expense persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to expense operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new expense row.
func (r *Repository) Create(ctx context.Context, dto CreateExpenseDTO) (*models.Expense, error) {
	expense := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

// FindByID loads an expense scoped to the family.
func (r *Repository) FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListByFamily returns the family's expenses newest first, optionally bounded
// by date.
func (r *Repository) ListByFamily(ctx context.Context, familyID uuid.UUID, from, to *time.Time) ([]models.Expense, error) {
	q := r.db.WithContext(ctx).
		Where("family_id = ?", familyID)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}

	var expenses []models.Expense
	if err := q.Order("date DESC, created_at DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Save writes the full expense row back.
func (r *Repository) Save(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

// Delete removes an expense row scoped to the family.
func (r *Repository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		Delete(&models.Expense{}).Error
}
