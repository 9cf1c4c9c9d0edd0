package middleware

import (
	"net/http"

	"github.com/famlyhq/famly-backend/api/responses"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
	"github.com/famlyhq/famly-backend/pkg/logger"
)

// FamilyContext rejects requests whose token carries no active family.
func FamilyContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FamilyIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "family context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
