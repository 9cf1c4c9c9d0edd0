package families

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/internal/memberships"
	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type familyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Family, error)
	Update(ctx context.Context, family *models.Family) error
}

type txFamilyRepository interface {
	Create(ctx context.Context, dto CreateFamilyDTO) (*models.Family, error)
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
	ListFamilyUsers(ctx context.Context, familyID uuid.UUID) ([]memberships.FamilyUserDTO, error)
	CountMembersWithRoles(ctx context.Context, familyID uuid.UUID, roles ...enums.FamilyRole) (int64, error)
	UpdateRole(ctx context.Context, membershipID uuid.UUID, role enums.FamilyRole) error
	Delete(ctx context.Context, membershipID uuid.UUID) error
}

type txMembershipRepository interface {
	CreateMembership(ctx context.Context, familyID, userID uuid.UUID, role enums.FamilyRole, invitedBy *uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes family operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateFamilyInput) (*FamilyDTO, error)
	GetByID(ctx context.Context, userID, familyID uuid.UUID) (*FamilyDTO, error)
	Update(ctx context.Context, userID, familyID uuid.UUID, input UpdateFamilyInput) (*FamilyDTO, error)
	ListUsers(ctx context.Context, userID, familyID uuid.UUID) ([]memberships.FamilyUserDTO, error)
	UpdateMemberRole(ctx context.Context, actorID, familyID, targetUserID uuid.UUID, role enums.FamilyRole) error
	RemoveUser(ctx context.Context, actorID, familyID, targetUserID uuid.UUID) error
}

// ServiceParams packages the dependencies for the family service.
type ServiceParams struct {
	TxRunner              txRunner
	Repo                  familyRepository
	Memberships           membershipsRepository
	FamilyRepoFactory     func(tx *gorm.DB) txFamilyRepository
	MembershipRepoFactory func(tx *gorm.DB) txMembershipRepository
}

type service struct {
	tx             txRunner
	repo           familyRepository
	memberships    membershipsRepository
	familyRepo     func(tx *gorm.DB) txFamilyRepository
	membershipRepo func(tx *gorm.DB) txMembershipRepository
}

// NewService builds a family service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("family repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}

	familyFactory := params.FamilyRepoFactory
	if familyFactory == nil {
		familyFactory = func(tx *gorm.DB) txFamilyRepository {
			return NewRepository(tx)
		}
	}
	membershipFactory := params.MembershipRepoFactory
	if membershipFactory == nil {
		membershipFactory = func(tx *gorm.DB) txMembershipRepository {
			return memberships.NewRepository(tx)
		}
	}

	return &service{
		tx:             params.TxRunner,
		repo:           params.Repo,
		memberships:    params.Memberships,
		familyRepo:     familyFactory,
		membershipRepo: membershipFactory,
	}, nil
}

// CreateFamilyInput captures the data required to create a family.
type CreateFamilyInput struct {
	Name      string
	AvatarURL *string
}

// UpdateFamilyInput captures the allowed family fields for mutation.
type UpdateFamilyInput struct {
	Name      *string
	AvatarURL *string
}

// Create persists a family and its first membership in one transaction. The
// creating user becomes the OWNER; a family without an owner must never exist.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateFamilyInput) (*FamilyDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "family name is required")
	}

	var created *models.Family
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		familyRepo := s.familyRepo(tx)
		membershipRepo := s.membershipRepo(tx)

		family, err := familyRepo.Create(ctx, CreateFamilyDTO{
			Name:      name,
			AvatarURL: input.AvatarURL,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create family")
		}

		if _, err := membershipRepo.CreateMembership(ctx, family.ID, userID, enums.FamilyRoleOwner, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner membership")
		}

		created = family
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, userID, familyID uuid.UUID) (*FamilyDTO, error) {
	if _, err := s.requireMembership(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	family, err := s.repo.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "family not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load family")
	}
	return FromModel(family), nil
}

func (s *service) Update(ctx context.Context, userID, familyID uuid.UUID, input UpdateFamilyInput) (*FamilyDTO, error) {
	if _, err := s.requireMembership(ctx, userID, familyID, enums.FamilyRoleAdmin); err != nil {
		return nil, err
	}

	family, err := s.repo.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "family not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load family")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "family name cannot be empty")
		}
		family.Name = name
	}
	if input.AvatarURL != nil {
		family.AvatarURL = cloneStringPtr(input.AvatarURL)
	}

	if err := s.repo.Update(ctx, family); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update family")
	}
	return FromModel(family), nil
}

func (s *service) ListUsers(ctx context.Context, userID, familyID uuid.UUID) ([]memberships.FamilyUserDTO, error) {
	if _, err := s.requireMembership(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	users, err := s.memberships.ListFamilyUsers(ctx, familyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list family users")
	}
	return users, nil
}

func (s *service) UpdateMemberRole(ctx context.Context, actorID, familyID, targetUserID uuid.UUID, role enums.FamilyRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	actor, err := s.requireMembership(ctx, actorID, familyID, enums.FamilyRoleAdmin)
	if err != nil {
		return err
	}

	target, err := s.memberships.GetMembership(ctx, targetUserID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	// Only an owner may grant or revoke the owner role.
	if (role == enums.FamilyRoleOwner || target.Role == enums.FamilyRoleOwner) && actor.Role != enums.FamilyRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only an owner can change owner roles")
	}

	if target.Role == enums.FamilyRoleOwner && role != enums.FamilyRoleOwner {
		if err := s.guardLastOwner(ctx, familyID); err != nil {
			return err
		}
	}

	if err := s.memberships.UpdateRole(ctx, target.ID, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return nil
}

func (s *service) RemoveUser(ctx context.Context, actorID, familyID, targetUserID uuid.UUID) error {
	actor, err := s.requireMembership(ctx, actorID, familyID, enums.FamilyRoleViewer)
	if err != nil {
		return err
	}

	// Leaving is always allowed; removing someone else takes admin rights.
	if actorID != targetUserID && !actor.Role.AtLeast(enums.FamilyRoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}

	target, err := s.memberships.GetMembership(ctx, targetUserID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	if actorID != targetUserID && target.Role == enums.FamilyRoleOwner && actor.Role != enums.FamilyRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only an owner can remove an owner")
	}

	if target.Role == enums.FamilyRoleOwner {
		if err := s.guardLastOwner(ctx, familyID); err != nil {
			return err
		}
	}

	if err := s.memberships.Delete(ctx, target.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}
	return nil
}

func (s *service) requireMembership(ctx context.Context, userID, familyID uuid.UUID, minRole enums.FamilyRole) (*models.FamilyMembership, error) {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(minRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return membership, nil
}

func (s *service) guardLastOwner(ctx context.Context, familyID uuid.UUID) error {
	count, err := s.memberships.CountMembersWithRoles(ctx, familyID, enums.FamilyRoleOwner)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
	}
	if count <= 1 {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove the last owner")
	}
	return nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
