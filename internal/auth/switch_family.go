package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/internal/memberships"
	pkgAuth "github.com/famlyhq/famly-backend/pkg/auth"
	"github.com/famlyhq/famly-backend/pkg/auth/session"
	"github.com/famlyhq/famly-backend/pkg/config"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

// SwitchFamilyInput captures the data required to switch the active family.
type SwitchFamilyInput struct {
	UserID        uuid.UUID
	FamilyID      uuid.UUID
	AccessTokenID string
	RefreshToken  string
}

// SwitchFamilyResult returns the tokens issued after switching families.
type SwitchFamilyResult struct {
	AccessToken  string
	RefreshToken string
	Family       FamilySummary
}

type switchMembershipsRepository interface {
	GetMembershipWithFamily(ctx context.Context, userID, familyID uuid.UUID) (*memberships.MembershipWithFamily, error)
}

type switchSessionRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

type switchFamilyService struct {
	memberships switchMembershipsRepository
	session     switchSessionRotator
	jwtCfg      config.JWTConfig
}

// SwitchFamilyServiceParams bundles dependencies for the switch flow.
type SwitchFamilyServiceParams struct {
	MembershipsRepo switchMembershipsRepository
	SessionManager  switchSessionRotator
	JWTConfig       config.JWTConfig
}

// SwitchFamilyService is the interface exposed to the controller.
type SwitchFamilyService interface {
	Switch(ctx context.Context, input SwitchFamilyInput) (*SwitchFamilyResult, error)
}

// NewSwitchFamilyService constructs the service.
func NewSwitchFamilyService(params SwitchFamilyServiceParams) (SwitchFamilyService, error) {
	if params.MembershipsRepo == nil {
		return nil, errors.New("memberships repository required")
	}
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	return &switchFamilyService{
		memberships: params.MembershipsRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *switchFamilyService) Switch(ctx context.Context, input SwitchFamilyInput) (*SwitchFamilyResult, error) {
	membership, err := s.memberships.GetMembershipWithFamily(ctx, input.UserID, input.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "family membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:         input.UserID,
		ActiveFamilyID: &input.FamilyID,
		Role:           membership.Role,
		JTI:            newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchFamilyResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Family: FamilySummary{
			ID:        membership.FamilyID,
			Name:      membership.FamilyName,
			Role:      membership.Role,
			AvatarURL: membership.FamilyAvatarURL,
		},
	}, nil
}
