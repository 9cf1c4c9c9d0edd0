package auth

import (
	"github.com/famlyhq/famly-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	ActiveFamilyID *uuid.UUID
	Role           enums.FamilyRole
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID         uuid.UUID        `json:"user_id"`
	ActiveFamilyID *uuid.UUID       `json:"active_family_id,omitempty"`
	Role           enums.FamilyRole `json:"role"`
	jwt.RegisteredClaims
}
