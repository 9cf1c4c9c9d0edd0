package invites

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// InviteDTO is the transport shape for a family invite.
type InviteDTO struct {
	ID        uuid.UUID          `json:"id"`
	FamilyID  uuid.UUID          `json:"family_id"`
	Email     string             `json:"email"`
	Code      string             `json:"invite_code"`
	Role      enums.FamilyRole   `json:"role"`
	Status    enums.InviteStatus `json:"status"`
	InviterID uuid.UUID          `json:"inviter_id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// InvitePreviewDTO is the public shape returned for code lookups. It carries
// just enough for the accept screen and never exposes the invitee email list
// to the unauthenticated caller.
type InvitePreviewDTO struct {
	FamilyID   uuid.UUID        `json:"family_id"`
	FamilyName string           `json:"family_name"`
	Role       enums.FamilyRole `json:"role"`
	Code       string           `json:"invite_code"`
}

// CreateInviteDTO holds the data required by the repo to persist a new invite.
type CreateInviteDTO struct {
	FamilyID  uuid.UUID
	Email     string
	Code      string
	Role      enums.FamilyRole
	InviterID uuid.UUID
}

func FromModel(i *models.FamilyInvite) *InviteDTO {
	if i == nil {
		return nil
	}

	return &InviteDTO{
		ID:        i.ID,
		FamilyID:  i.FamilyID,
		Email:     i.Email,
		Code:      i.Code,
		Role:      i.Role,
		Status:    i.Status,
		InviterID: i.InviterID,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (c CreateInviteDTO) ToModel() *models.FamilyInvite {
	return &models.FamilyInvite{
		FamilyID:  c.FamilyID,
		Email:     c.Email,
		Code:      c.Code,
		Role:      c.Role,
		Status:    enums.InviteStatusPending,
		InviterID: c.InviterID,
	}
}
