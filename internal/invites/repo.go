package invites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// Repository handles invite persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to invite operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new invite row.
func (r *Repository) Create(ctx context.Context, dto CreateInviteDTO) (*models.FamilyInvite, error) {
	invite := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

// FindByID loads an invite by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindByCode loads an invite by its redemption code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListByFamily returns all invites for the family, newest first.
func (r *Repository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.FamilyInvite, error) {
	var invites []models.FamilyInvite
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// UpdateStatus transitions an invite to the provided status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InviteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.FamilyInvite{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// RevokeStalePending marks PENDING invites created before the cutoff as REVOKED
// and returns how many rows were touched.
func (r *Repository) RevokeStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FamilyInvite{}).
		Where("status = ? AND created_at < ?", enums.InviteStatusPending, cutoff).
		UpdateColumn("status", enums.InviteStatusRevoked)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
