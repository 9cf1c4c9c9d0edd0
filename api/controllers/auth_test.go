package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/api/middleware"
	"github.com/famlyhq/famly-backend/internal/auth"
	"github.com/famlyhq/famly-backend/internal/users"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

type stubAuthService struct {
	login *auth.LoginResponse
	me    *auth.MeResponse
	err   error
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*auth.MeResponse, error) {
	return s.me, s.err
}

type stubRegisterService struct {
	err error
}

func (s stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	familyID := uuid.New()
	user := &users.UserDTO{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana Perez", IsActive: true}
	handler := AuthLogin(stubAuthService{login: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Families: []auth.FamilySummary{
			{ID: familyID, Name: "Perez Household", Role: enums.FamilyRoleOwner},
		},
		User: user,
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"ana@example.com","password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Famly-Token"); got != "access-token" {
		t.Fatalf("expected token header set got %q", got)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token in payload got %q", envelope.Data.RefreshToken)
	}
	if len(envelope.Data.Families) != 1 || envelope.Data.Families[0].Name != "Perez Household" {
		t.Fatalf("expected family summary got %+v", envelope.Data.Families)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"ana@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"ana@example.com","password":"wrong-pass"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRegisterSuccessLogsIn(t *testing.T) {
	user := &users.UserDTO{ID: uuid.New(), Email: "ben@example.com", FullName: "Ben Ruiz", IsActive: true}
	handler := AuthRegister(
		stubRegisterService{},
		stubAuthService{login: &auth.LoginResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			User:         user,
		}},
		nil,
	)

	body := `{"full_name":"Ben Ruiz","email":"ben@example.com","password":"Secret#12","family_name":"Ruiz Household"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Famly-Token"); got != "access-token" {
		t.Fatalf("expected token header set got %q", got)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != "ben@example.com" {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	handler := AuthRegister(
		stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")},
		stubAuthService{},
		nil,
	)

	body := `{"full_name":"Ben Ruiz","email":"ben@example.com","password":"Secret#12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAuthMeRequiresUserContext(t *testing.T) {
	handler := AuthMe(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthMeSuccess(t *testing.T) {
	userID := uuid.New()
	handler := AuthMe(stubAuthService{me: &auth.MeResponse{
		User: &users.UserDTO{ID: userID, Email: "ana@example.com", FullName: "Ana Perez"},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data auth.MeResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.ID != userID {
		t.Fatalf("expected user %s got %+v", userID, envelope.Data.User)
	}
}
