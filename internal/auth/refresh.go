package auth

import (
	"context"
	"errors"
	"time"

	pkgAuth "github.com/famlyhq/famly-backend/pkg/auth"
	"github.com/famlyhq/famly-backend/pkg/auth/session"
	"github.com/famlyhq/famly-backend/pkg/config"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

// RefreshService rotates a session into a fresh token pair and revokes
// sessions on logout.
type RefreshService interface {
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessTokenID string) error
}

type refreshSessionManager interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// RefreshServiceParams bundles dependencies for the refresh flow.
type RefreshServiceParams struct {
	SessionManager refreshSessionManager
	JWTConfig      config.JWTConfig
}

type refreshService struct {
	session refreshSessionManager
	jwtCfg  config.JWTConfig
}

// NewRefreshService constructs the service.
func NewRefreshService(params RefreshServiceParams) (RefreshService, error) {
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	return &refreshService{
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
	}, nil
}

// Refresh accepts an expired access token plus its refresh token, rotates the
// session, and mints a new pair carrying the same identity and active family.
func (s *refreshService) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:         claims.UserID,
		ActiveFamilyID: claims.ActiveFamilyID,
		Role:           claims.Role,
		JTI:            newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *refreshService) Logout(ctx context.Context, accessTokenID string) error {
	if err := s.session.Revoke(ctx, accessTokenID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}
