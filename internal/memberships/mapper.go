package memberships

import (
	"time"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

type membershipWithFamilyRow struct {
	models.FamilyMembership
	FamilyName      string  `gorm:"column:family_name"`
	FamilyAvatarURL *string `gorm:"column:family_avatar_url"`
}

func membershipWithFamilyFromRow(row membershipWithFamilyRow) MembershipWithFamily {
	return MembershipWithFamily{
		MembershipID:    row.ID,
		FamilyID:        row.FamilyID,
		UserID:          row.UserID,
		FamilyName:      row.FamilyName,
		FamilyAvatarURL: row.FamilyAvatarURL,
		Role:            row.Role,
		InvitedByUserID: copyUUIDPointer(row.InvitedByUserID),
		JoinedAt:        row.JoinedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithFamilyRow) []MembershipWithFamily {
	out := make([]MembershipWithFamily, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithFamilyFromRow(row))
	}
	return out
}

type familyUserRow struct {
	models.FamilyMembership
	Email       string     `gorm:"column:email"`
	FullName    string     `gorm:"column:full_name"`
	AvatarURL   *string    `gorm:"column:avatar_url"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func familyUsersFromRows(rows []familyUserRow) []FamilyUserDTO {
	out := make([]FamilyUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FamilyUserDTO{
			MembershipID: row.ID,
			FamilyID:     row.FamilyID,
			UserID:       row.UserID,
			Email:        row.Email,
			FullName:     row.FullName,
			AvatarURL:    row.AvatarURL,
			Role:         row.Role,
			JoinedAt:     row.JoinedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
