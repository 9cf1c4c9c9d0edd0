package families

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// Repository handles family persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to family operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new family row.
func (r *Repository) Create(ctx context.Context, dto CreateFamilyDTO) (*models.Family, error) {
	family := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(family).Error; err != nil {
		return nil, err
	}
	return family, nil
}

// FindByID loads a family by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

// Update writes the full family row back.
func (r *Repository) Update(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Save(family).Error
}
