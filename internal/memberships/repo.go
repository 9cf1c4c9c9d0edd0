package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUserFamilies returns the families a user belongs to along with membership metadata.
func (r *Repository) ListUserFamilies(ctx context.Context, userID uuid.UUID) ([]MembershipWithFamily, error) {
	var rows []membershipWithFamilyRow

	err := r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Select("family_members.*, families.name AS family_name, families.avatar_url AS family_avatar_url").
		Joins("JOIN families ON families.id = family_members.family_id").
		Where("family_members.user_id = ?", userID).
		Order("families.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembershipWithFamily retrieves a single membership joined with its family metadata.
func (r *Repository) GetMembershipWithFamily(ctx context.Context, userID, familyID uuid.UUID) (*MembershipWithFamily, error) {
	var row membershipWithFamilyRow

	err := r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Select("family_members.*, families.name AS family_name, families.avatar_url AS family_avatar_url").
		Joins("JOIN families ON families.id = family_members.family_id").
		Where("family_members.user_id = ? AND family_members.family_id = ?", userID, familyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}

	dto := membershipWithFamilyFromRow(row)
	return &dto, nil
}

// GetMembership retrieves a membership by user and family.
func (r *Repository) GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error) {
	var membership models.FamilyMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND family_id = ?", userID, familyID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, familyID, userID uuid.UUID, role enums.FamilyRole, invitedBy *uuid.UUID) (*models.FamilyMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid family role %q", role)
	}

	membership := &models.FamilyMembership{
		FamilyID:        familyID,
		UserID:          userID,
		Role:            role,
		InvitedByUserID: invitedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UserHasRole reports whether the user holds one of the provided roles in the family.
func (r *Repository) UserHasRole(ctx context.Context, userID, familyID uuid.UUID, roles ...enums.FamilyRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Where("user_id = ? AND family_id = ? AND role IN ?", userID, familyID, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMembersWithRoles counts family members that hold one of the provided roles.
func (r *Repository) CountMembersWithRoles(ctx context.Context, familyID uuid.UUID, roles ...enums.FamilyRole) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Where("family_id = ? AND role IN ?", familyID, roles).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListFamilyUsers returns memberships for the family along with user metadata.
func (r *Repository) ListFamilyUsers(ctx context.Context, familyID uuid.UUID) ([]FamilyUserDTO, error) {
	var rows []familyUserRow
	err := r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Select("family_members.*, users.email, users.full_name, users.avatar_url, users.last_login_at").
		Joins("JOIN users ON users.id = family_members.user_id").
		Where("family_members.family_id = ?", familyID).
		Order("family_members.joined_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return familyUsersFromRows(rows), nil
}

// UpdateRole changes the role of an existing membership.
func (r *Repository) UpdateRole(ctx context.Context, membershipID uuid.UUID, role enums.FamilyRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid family role %q", role)
	}
	return r.db.WithContext(ctx).
		Model(&models.FamilyMembership{}).
		Where("id = ?", membershipID).
		UpdateColumn("role", role).Error
}

// Delete removes a membership row.
func (r *Repository) Delete(ctx context.Context, membershipID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.FamilyMembership{}, "id = ?", membershipID).Error
}
