package shopping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// Repository handles shopping list and item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shopping operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateList persists a new shopping list row.
func (r *Repository) CreateList(ctx context.Context, dto CreateListDTO) (*models.ShoppingList, error) {
	list := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindListByID loads a shopping list scoped to the family.
func (r *Repository) FindListByID(ctx context.Context, familyID, id uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListsByFamily returns the family's shopping lists in creation order.
func (r *Repository) ListsByFamily(ctx context.Context, familyID uuid.UUID) ([]models.ShoppingList, error) {
	var lists []models.ShoppingList
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// DeleteList removes a list; the schema cascades item deletion.
func (r *Repository) DeleteList(ctx context.Context, familyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, id).
		Delete(&models.ShoppingList{}).Error
}

// CreateItem persists a new item row.
func (r *Repository) CreateItem(ctx context.Context, dto CreateItemDTO) (*models.ShoppingItem, error) {
	item := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindItemByID loads an item belonging to the provided list.
func (r *Repository) FindItemByID(ctx context.Context, listID, id uuid.UUID) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND id = ?", listID, id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemsByList returns a list's items in creation order.
func (r *Repository) ItemsByList(ctx context.Context, listID uuid.UUID) ([]models.ShoppingItem, error) {
	var items []models.ShoppingItem
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveItem writes the full item row back.
func (r *Repository) SaveItem(ctx context.Context, item *models.ShoppingItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes an item row.
func (r *Repository) DeleteItem(ctx context.Context, listID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("list_id = ? AND id = ?", listID, id).
		Delete(&models.ShoppingItem{}).Error
}
