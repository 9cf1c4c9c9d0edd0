package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/pkg/enums"
)

type stubMembershipChecker struct {
	ok        bool
	err       error
	lastRoles []enums.FamilyRole
}

func (s *stubMembershipChecker) UserHasRole(ctx context.Context, userID, familyID uuid.UUID, roles ...enums.FamilyRole) (bool, error) {
	s.lastRoles = roles
	return s.ok, s.err
}

func rolesTestRequest(userID, familyID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()
	if userID != "" {
		ctx = WithUserID(ctx, userID)
	}
	if familyID != "" {
		ctx = WithFamilyID(ctx, familyID)
	}
	return req.WithContext(ctx)
}

func TestRequireFamilyRolesAllowsMatchingRole(t *testing.T) {
	checker := &stubMembershipChecker{ok: true}
	handler := RequireFamilyRoles(checker, nil, enums.FamilyRoleOwner, enums.FamilyRoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, rolesTestRequest(uuid.New().String(), uuid.New().String()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(checker.lastRoles) != 2 || checker.lastRoles[0] != enums.FamilyRoleOwner {
		t.Fatalf("expected allowed roles forwarded got %v", checker.lastRoles)
	}
}

func TestRequireFamilyRolesRejectsInsufficientRole(t *testing.T) {
	handler := RequireFamilyRoles(&stubMembershipChecker{ok: false}, nil, enums.FamilyRoleOwner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, rolesTestRequest(uuid.New().String(), uuid.New().String()))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireFamilyRolesRequiresFamilyContext(t *testing.T) {
	handler := RequireFamilyRoles(&stubMembershipChecker{ok: true}, nil, enums.FamilyRoleOwner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, rolesTestRequest(uuid.New().String(), ""))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireFamilyRolesRequiresUserContext(t *testing.T) {
	handler := RequireFamilyRoles(&stubMembershipChecker{ok: true}, nil, enums.FamilyRoleOwner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, rolesTestRequest("", uuid.New().String()))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
