package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/enums"
)

// FamilyInvite is a redeemable, code-bearing offer of membership.
type FamilyInvite struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FamilyID  uuid.UUID          `gorm:"column:family_id;type:uuid;not null;index"`
	Email     string             `gorm:"column:email;not null"`
	Code      string             `gorm:"column:invite_code;not null;uniqueIndex:invites_invite_code_key"`
	Role      enums.FamilyRole   `gorm:"column:role;type:family_role;not null"`
	Status    enums.InviteStatus `gorm:"column:status;type:invite_status;not null;default:'PENDING'"`
	InviterID uuid.UUID          `gorm:"column:inviter_id;type:uuid;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (FamilyInvite) TableName() string { return "invites" }
