package families

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// FamilyDTO is the transport shape for a family.
type FamilyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFamilyDTO holds the data required by the repo to persist a new family.
type CreateFamilyDTO struct {
	Name      string
	AvatarURL *string
}

func FromModel(f *models.Family) *FamilyDTO {
	if f == nil {
		return nil
	}

	return &FamilyDTO{
		ID:        f.ID,
		Name:      f.Name,
		AvatarURL: f.AvatarURL,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (c CreateFamilyDTO) ToModel() *models.Family {
	return &models.Family{
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
	}
}
