package familycontext

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/api/middleware"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

// ResolveUserID extracts the authenticated user from the request context.
func ResolveUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

// ResolveActor extracts the authenticated user plus their active family.
func ResolveActor(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := ResolveUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	raw := middleware.FamilyIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "family context required")
	}
	familyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid family id")
	}
	return userID, familyID, nil
}
