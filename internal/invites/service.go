package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/internal/memberships"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/db"
	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

// Invite code collisions are retried a bounded number of times before giving up.
const maxCodeAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inviteRepository interface {
	Create(ctx context.Context, dto CreateInviteDTO) (*models.FamilyInvite, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FamilyInvite, error)
	FindByCode(ctx context.Context, code string) (*models.FamilyInvite, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.FamilyInvite, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InviteStatus) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
}

type familyLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Family, error)
}

type txInviteRepository interface {
	FindByCode(ctx context.Context, code string) (*models.FamilyInvite, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InviteStatus) error
}

type txMembershipRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
	CreateMembership(ctx context.Context, familyID, userID uuid.UUID, role enums.FamilyRole, invitedBy *uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes invite operations.
type Service interface {
	Create(ctx context.Context, actorID, familyID uuid.UUID, input CreateInviteInput) (*InviteDTO, error)
	GetByCode(ctx context.Context, code string) (*InvitePreviewDTO, error)
	Accept(ctx context.Context, userID uuid.UUID, code string) (*memberships.MembershipDTO, error)
	Revoke(ctx context.Context, actorID, inviteID uuid.UUID) (*InviteDTO, error)
	ListByFamily(ctx context.Context, actorID, familyID uuid.UUID) ([]InviteDTO, error)
}

// ServiceParams packages the dependencies for the invite service.
type ServiceParams struct {
	TxRunner              txRunner
	Repo                  inviteRepository
	Memberships           membershipsRepository
	Families              familyLookup
	InviteConfig          config.InviteConfig
	InviteRepoFactory     func(tx *gorm.DB) txInviteRepository
	MembershipRepoFactory func(tx *gorm.DB) txMembershipRepository
}

type service struct {
	tx             txRunner
	repo           inviteRepository
	memberships    membershipsRepository
	families       familyLookup
	cfg            config.InviteConfig
	inviteRepo     func(tx *gorm.DB) txInviteRepository
	membershipRepo func(tx *gorm.DB) txMembershipRepository
}

// NewService builds an invite service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("invite repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Families == nil {
		return nil, fmt.Errorf("family repository required")
	}

	inviteFactory := params.InviteRepoFactory
	if inviteFactory == nil {
		inviteFactory = func(tx *gorm.DB) txInviteRepository {
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
		families:       params.Families,
		cfg:            params.InviteConfig,
		inviteRepo:     inviteFactory,
		membershipRepo: membershipFactory,
	}, nil
}

// CreateInviteInput captures the data required to invite someone.
type CreateInviteInput struct {
	Email string
	Role  enums.FamilyRole
}

func (s *service) Create(ctx context.Context, actorID, familyID uuid.UUID, input CreateInviteInput) (*InviteDTO, error) {
	if err := s.requireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.FamilyRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invites cannot grant the owner role")
	}

	length := s.cfg.CodeLength
	if length <= 0 {
		length = config.DefaultInviteCodeLength
	}

	var created *models.FamilyInvite
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode(length)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
		}

		created, err = s.repo.Create(ctx, CreateInviteDTO{
			FamilyID:  familyID,
			Email:     email,
			Code:      code,
			Role:      input.Role,
			InviterID: actorID,
		})
		if err == nil {
			return FromModel(created), nil
		}
		if !db.IsUniqueViolation(err, "invites_invite_code_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invite")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invite code")
}

func (s *service) GetByCode(ctx context.Context, code string) (*InvitePreviewDTO, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	invite, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}

	// Redeemed and revoked codes look identical to unknown ones from outside.
	if invite.Status != enums.InviteStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
	}

	family, err := s.families.FindByID(ctx, invite.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load family")
	}

	return &InvitePreviewDTO{
		FamilyID:   invite.FamilyID,
		FamilyName: family.Name,
		Role:       invite.Role,
		Code:       invite.Code,
	}, nil
}

// Accept redeems an invite code for the calling user. The status flip and the
// membership insert happen in one transaction so a code can never be redeemed
// without producing a membership.
func (s *service) Accept(ctx context.Context, userID uuid.UUID, code string) (*memberships.MembershipDTO, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	var created *models.FamilyMembership
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		inviteRepo := s.inviteRepo(tx)
		membershipRepo := s.membershipRepo(tx)

		invite, err := inviteRepo.FindByCode(ctx, normalized)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
		}

		if invite.Status != enums.InviteStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invite is no longer pending")
		}

		if _, err := membershipRepo.GetMembership(ctx, userID, invite.FamilyID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "already a member of this family")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}

		if err := inviteRepo.UpdateStatus(ctx, invite.ID, enums.InviteStatusAccepted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invite")
		}

		membership, err := membershipRepo.CreateMembership(ctx, invite.FamilyID, userID, invite.Role, &invite.InviterID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}

		created = membership
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memberships.ToDTO(created), nil
}

func (s *service) Revoke(ctx context.Context, actorID, inviteID uuid.UUID) (*InviteDTO, error) {
	invite, err := s.repo.FindByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}

	if err := s.requireAdmin(ctx, actorID, invite.FamilyID); err != nil {
		return nil, err
	}

	if invite.Status != enums.InviteStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invite is no longer pending")
	}

	if err := s.repo.UpdateStatus(ctx, invite.ID, enums.InviteStatusRevoked); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke invite")
	}

	invite.Status = enums.InviteStatusRevoked
	return FromModel(invite), nil
}

func (s *service) ListByFamily(ctx context.Context, actorID, familyID uuid.UUID) ([]InviteDTO, error) {
	if err := s.requireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invites")
	}

	out := make([]InviteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) requireAdmin(ctx context.Context, userID, familyID uuid.UUID) error {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(enums.FamilyRoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return nil
}
