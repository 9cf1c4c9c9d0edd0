package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/internal/families"
	"github.com/famlyhq/famly-backend/internal/memberships"
	"github.com/famlyhq/famly-backend/internal/users"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
	"github.com/famlyhq/famly-backend/pkg/security"
)

// RegisterRequest contains the payload required for onboarding a new user.
// FamilyName is optional; when present the user's household is created in the
// same transaction and they become its owner.
type RegisterRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	FamilyName *string `json:"family_name,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerFamilyRepository interface {
	Create(ctx context.Context, dto families.CreateFamilyDTO) (*models.Family, error)
}

type registerMembershipRepository interface {
	CreateMembership(ctx context.Context, familyID, userID uuid.UUID, role enums.FamilyRole, invitedBy *uuid.UUID) (*models.FamilyMembership, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner              txRunner
	UserRepoFactory       func(tx *gorm.DB) registerUserRepository
	FamilyRepoFactory     func(tx *gorm.DB) registerFamilyRepository
	MembershipRepoFactory func(tx *gorm.DB) registerMembershipRepository
	PasswordConfig        config.PasswordConfig
}

type registerService struct {
	tx             txRunner
	userRepo       func(tx *gorm.DB) registerUserRepository
	familyRepo     func(tx *gorm.DB) registerFamilyRepository
	membershipRepo func(tx *gorm.DB) registerMembershipRepository
	passwordCfg    config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}

	userFactory := params.UserRepoFactory
	if userFactory == nil {
		userFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	familyFactory := params.FamilyRepoFactory
	if familyFactory == nil {
		familyFactory = func(tx *gorm.DB) registerFamilyRepository {
			return families.NewRepository(tx)
		}
	}
	membershipFactory := params.MembershipRepoFactory
	if membershipFactory == nil {
		membershipFactory = func(tx *gorm.DB) registerMembershipRepository {
			return memberships.NewRepository(tx)
		}
	}

	return &registerService{
		tx:             params.TxRunner,
		userRepo:       userFactory,
		familyRepo:     familyFactory,
		membershipRepo: membershipFactory,
		passwordCfg:    params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	var familyName string
	if req.FamilyName != nil {
		familyName = strings.TrimSpace(*req.FamilyName)
		if familyName == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "family name cannot be blank")
		}
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		familyRepo := s.familyRepo(tx)
		membershipRepo := s.membershipRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			AvatarURL:    req.AvatarURL,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if familyName == "" {
			return nil
		}

		family, err := familyRepo.Create(ctx, families.CreateFamilyDTO{Name: familyName})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create family")
		}

		if _, err := membershipRepo.CreateMembership(
			ctx,
			family.ID,
			user.ID,
			enums.FamilyRoleOwner,
			nil,
		); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}

		return nil
	})
}
