package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/enums"
)

// FamilyMembership links a user with a family and captures their role.
// A user holds at most one membership per family.
type FamilyMembership struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FamilyID        uuid.UUID        `gorm:"column:family_id;type:uuid;not null;uniqueIndex:family_members_family_id_user_id_key"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:family_members_family_id_user_id_key"`
	Role            enums.FamilyRole `gorm:"column:role;type:family_role;not null"`
	InvitedByUserID *uuid.UUID       `gorm:"column:invited_by_user_id;type:uuid"`
	JoinedAt        time.Time        `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (FamilyMembership) TableName() string { return "family_members" }
