package auth

import (
	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/internal/users"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FamilySummary describes the family metadata returned after login.
type FamilySummary struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Role      enums.FamilyRole `json:"role"`
	AvatarURL *string          `json:"avatar_url,omitempty"`
}

// LoginResponse contains the tokens, user, and family list produced by a successful login.
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Families     []FamilySummary `json:"families"`
	User         *users.UserDTO  `json:"user"`
}

// RefreshRequest carries the expired access token and the refresh token to rotate.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MeResponse bundles the authenticated user with their family memberships.
type MeResponse struct {
	User     *users.UserDTO  `json:"user"`
	Families []FamilySummary `json:"families"`
}
