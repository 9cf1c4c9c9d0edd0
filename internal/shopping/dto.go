package shopping

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// ListDTO is the transport shape for a shopping list.
type ListDTO struct {
	ID        uuid.UUID `json:"id"`
	FamilyID  uuid.UUID `json:"family_id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDTO is the transport shape for a shopping list item.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ListID    uuid.UUID `json:"list_id"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"is_done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListWithItemsDTO pairs a list with its items in creation order.
type ListWithItemsDTO struct {
	ListDTO
	Items []ItemDTO `json:"items"`
}

// CreateListDTO holds the data required by the repo to persist a new list.
type CreateListDTO struct {
	FamilyID  uuid.UUID
	Name      string
	CreatedBy uuid.UUID
}

// CreateItemDTO holds the data required by the repo to persist a new item.
type CreateItemDTO struct {
	ListID uuid.UUID
	Title  string
}

func ListFromModel(l *models.ShoppingList) *ListDTO {
	if l == nil {
		return nil
	}

	return &ListDTO{
		ID:        l.ID,
		FamilyID:  l.FamilyID,
		Name:      l.Name,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func ItemFromModel(i *models.ShoppingItem) *ItemDTO {
	if i == nil {
		return nil
	}

	return &ItemDTO{
		ID:        i.ID,
		ListID:    i.ListID,
		Title:     i.Title,
		IsDone:    i.IsDone,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (c CreateListDTO) ToModel() *models.ShoppingList {
	return &models.ShoppingList{
		FamilyID:  c.FamilyID,
		Name:      c.Name,
		CreatedBy: c.CreatedBy,
	}
}

func (c CreateItemDTO) ToModel() *models.ShoppingItem {
	return &models.ShoppingItem{
		ListID: c.ListID,
		Title:  c.Title,
	}
}
