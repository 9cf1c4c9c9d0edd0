package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// Repository handles calendar event persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to event operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new event row.
func (r *Repository) Create(ctx context.Context, dto CreateEventDTO) (*models.Event, error) {
	event := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// FindByID loads an event by its UUID scoped to the family.
func (r *Repository) FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByFamily returns the family's events ordered by start time. The optional
// window bounds filter on the event start.
func (r *Repository) ListByFamily(ctx context.Context, familyID uuid.UUID, from, to *time.Time) ([]models.Event, error) {
	q := r.db.WithContext(ctx).
		Where("family_id = ?", familyID)
	if from != nil {
		q = q.Where("start_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_at < ?", *to)
	}

	var events []models.Event
	if err := q.Order("start_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Save writes the full event row back.
func (r *Repository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes an event row scoped to the family.
func (r *Repository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		Delete(&models.Event{}).Error
}
