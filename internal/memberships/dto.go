package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID        `json:"id"`
	FamilyID        uuid.UUID        `json:"family_id"`
	UserID          uuid.UUID        `json:"user_id"`
	Role            enums.FamilyRole `json:"role"`
	InvitedByUserID *uuid.UUID       `json:"invited_by_user_id,omitempty"`
	JoinedAt        time.Time        `json:"joined_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// MembershipWithFamily includes basic family metadata + membership info.
type MembershipWithFamily struct {
	MembershipID    uuid.UUID        `json:"membership_id"`
	FamilyID        uuid.UUID        `json:"family_id"`
	UserID          uuid.UUID        `json:"user_id"`
	FamilyName      string           `json:"family_name"`
	FamilyAvatarURL *string          `json:"family_avatar_url,omitempty"`
	Role            enums.FamilyRole `json:"role"`
	InvitedByUserID *uuid.UUID       `json:"invited_by_user_id,omitempty"`
	JoinedAt        time.Time        `json:"joined_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// FamilyUserDTO mixes membership metadata with the associated user profile.
type FamilyUserDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	FamilyID     uuid.UUID        `json:"family_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Email        string           `json:"email"`
	FullName     string           `json:"full_name"`
	AvatarURL    *string          `json:"avatar_url,omitempty"`
	Role         enums.FamilyRole `json:"role"`
	JoinedAt     time.Time        `json:"joined_at"`
	LastLoginAt  *time.Time       `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.FamilyMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:              m.ID,
		FamilyID:        m.FamilyID,
		UserID:          m.UserID,
		Role:            m.Role,
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		JoinedAt:        m.JoinedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
