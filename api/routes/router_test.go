package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/famlyhq/famly-backend/internal/auth"
	"github.com/famlyhq/famly-backend/internal/events"
	"github.com/famlyhq/famly-backend/internal/expenses"
	"github.com/famlyhq/famly-backend/internal/families"
	"github.com/famlyhq/famly-backend/internal/invites"
	"github.com/famlyhq/famly-backend/internal/memberships"
	"github.com/famlyhq/famly-backend/internal/shopping"
	"github.com/famlyhq/famly-backend/internal/tasks"
	"github.com/famlyhq/famly-backend/internal/users"
	pkgAuth "github.com/famlyhq/famly-backend/pkg/auth"
	"github.com/famlyhq/famly-backend/pkg/auth/session"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/enums"
	"github.com/famlyhq/famly-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubMembershipChecker struct{}

func (stubMembershipChecker) UserHasRole(ctx context.Context, userID, familyID uuid.UUID, roles ...enums.FamilyRole) (bool, error) {
	return true, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return session.NewAccessID(), "rotated", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*auth.MeResponse, error) {
	return &auth.MeResponse{User: &users.UserDTO{ID: userID}}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return nil
}

type stubRefreshService struct{}

func (stubRefreshService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubRefreshService) Logout(ctx context.Context, accessTokenID string) error {
	return nil
}

type stubSwitchService struct{}

func (stubSwitchService) Switch(ctx context.Context, input auth.SwitchFamilyInput) (*auth.SwitchFamilyResult, error) {
	return &auth.SwitchFamilyResult{AccessToken: "access", RefreshToken: "refresh"}, nil
}

type stubFamilyService struct{}

func (stubFamilyService) Create(ctx context.Context, userID uuid.UUID, input families.CreateFamilyInput) (*families.FamilyDTO, error) {
	return &families.FamilyDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubFamilyService) GetByID(ctx context.Context, userID, familyID uuid.UUID) (*families.FamilyDTO, error) {
	return &families.FamilyDTO{ID: familyID, Name: "Test Household"}, nil
}

func (stubFamilyService) Update(ctx context.Context, userID, familyID uuid.UUID, input families.UpdateFamilyInput) (*families.FamilyDTO, error) {
	return &families.FamilyDTO{ID: familyID}, nil
}

func (stubFamilyService) ListUsers(ctx context.Context, userID, familyID uuid.UUID) ([]memberships.FamilyUserDTO, error) {
	return nil, nil
}

func (stubFamilyService) UpdateMemberRole(ctx context.Context, actorID, familyID, targetUserID uuid.UUID, role enums.FamilyRole) error {
	return nil
}

func (stubFamilyService) RemoveUser(ctx context.Context, actorID, familyID, targetUserID uuid.UUID) error {
	return nil
}

type stubInviteService struct{}

func (stubInviteService) Create(ctx context.Context, actorID, familyID uuid.UUID, input invites.CreateInviteInput) (*invites.InviteDTO, error) {
	return &invites.InviteDTO{ID: uuid.New()}, nil
}

func (stubInviteService) GetByCode(ctx context.Context, code string) (*invites.InvitePreviewDTO, error) {
	return &invites.InvitePreviewDTO{FamilyName: "Test Household"}, nil
}

func (stubInviteService) Accept(ctx context.Context, userID uuid.UUID, code string) (*memberships.MembershipDTO, error) {
	return &memberships.MembershipDTO{ID: uuid.New()}, nil
}

func (stubInviteService) Revoke(ctx context.Context, actorID, inviteID uuid.UUID) (*invites.InviteDTO, error) {
	return &invites.InviteDTO{ID: inviteID}, nil
}

func (stubInviteService) ListByFamily(ctx context.Context, actorID, familyID uuid.UUID) ([]invites.InviteDTO, error) {
	return nil, nil
}

type stubTaskService struct{}

func (stubTaskService) List(ctx context.Context, userID, familyID uuid.UUID, filter tasks.Filter) (*tasks.TaskListView, error) {
	return &tasks.TaskListView{}, nil
}

func (stubTaskService) GetByID(ctx context.Context, userID, familyID, taskID uuid.UUID) (*tasks.TaskDTO, error) {
	return &tasks.TaskDTO{ID: taskID}, nil
}

func (stubTaskService) Create(ctx context.Context, userID, familyID uuid.UUID, input tasks.TaskInput) (*tasks.TaskDTO, error) {
	return &tasks.TaskDTO{ID: uuid.New()}, nil
}

func (stubTaskService) Replace(ctx context.Context, userID, familyID, taskID uuid.UUID, input tasks.TaskInput) (*tasks.TaskDTO, error) {
	return &tasks.TaskDTO{ID: taskID}, nil
}

func (stubTaskService) CycleStatus(ctx context.Context, userID, familyID, taskID uuid.UUID) (*tasks.TaskDTO, error) {
	return &tasks.TaskDTO{ID: taskID}, nil
}

func (stubTaskService) Delete(ctx context.Context, userID, familyID, taskID uuid.UUID) error {
	return nil
}

type stubEventService struct{}

func (stubEventService) List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]events.EventDTO, error) {
	return nil, nil
}

func (stubEventService) GetByID(ctx context.Context, userID, familyID, eventID uuid.UUID) (*events.EventDTO, error) {
	return &events.EventDTO{ID: eventID}, nil
}

func (stubEventService) Create(ctx context.Context, userID, familyID uuid.UUID, input events.EventInput) (*events.EventDTO, error) {
	return &events.EventDTO{ID: uuid.New()}, nil
}

func (stubEventService) Update(ctx context.Context, userID, familyID, eventID uuid.UUID, input events.EventInput) (*events.EventDTO, error) {
	return &events.EventDTO{ID: eventID}, nil
}

func (stubEventService) Delete(ctx context.Context, userID, familyID, eventID uuid.UUID) error {
	return nil
}

type stubShoppingService struct{}

func (stubShoppingService) ListLists(ctx context.Context, userID, familyID uuid.UUID) ([]shopping.ListWithItemsDTO, error) {
	return nil, nil
}

func (stubShoppingService) CreateList(ctx context.Context, userID, familyID uuid.UUID, name string) (*shopping.ListDTO, error) {
	return &shopping.ListDTO{ID: uuid.New(), Name: name}, nil
}

func (stubShoppingService) DeleteList(ctx context.Context, userID, familyID, listID uuid.UUID) error {
	return nil
}

func (stubShoppingService) ListItems(ctx context.Context, userID, familyID, listID uuid.UUID) ([]shopping.ItemDTO, error) {
	return nil, nil
}

func (stubShoppingService) AddItem(ctx context.Context, userID, familyID, listID uuid.UUID, title string) (*shopping.ItemDTO, error) {
	return &shopping.ItemDTO{ID: uuid.New(), Title: title}, nil
}

func (stubShoppingService) ToggleItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) (*shopping.ItemDTO, error) {
	return &shopping.ItemDTO{ID: itemID}, nil
}

func (stubShoppingService) DeleteItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) error {
	return nil
}

type stubExpenseService struct{}

func (stubExpenseService) List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]expenses.ExpenseDTO, error) {
	return nil, nil
}

func (stubExpenseService) Create(ctx context.Context, userID, familyID uuid.UUID, input expenses.ExpenseInput) (*expenses.ExpenseDTO, error) {
	return &expenses.ExpenseDTO{ID: uuid.New()}, nil
}

func (stubExpenseService) Update(ctx context.Context, userID, familyID, expenseID uuid.UUID, input expenses.ExpenseInput) (*expenses.ExpenseDTO, error) {
	return &expenses.ExpenseDTO{ID: expenseID}, nil
}

func (stubExpenseService) Delete(ctx context.Context, userID, familyID, expenseID uuid.UUID) error {
	return nil
}

func (stubExpenseService) Summary(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) (*expenses.SummaryDTO, error) {
	return &expenses.SummaryDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "famly", ExpirationMinutes: 30},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, stubSessionManager{}, Services{
		Auth:         stubAuthService{},
		Register:     stubRegisterService{},
		Refresh:      stubRefreshService{},
		SwitchFamily: stubSwitchService{},
		Families:     stubFamilyService{},
		Invites:      stubInviteService{},
		Tasks:        stubTaskService{},
		Events:       stubEventService{},
		Shopping:     stubShoppingService{},
		Expenses:     stubExpenseService{},
		Memberships:  stubMembershipChecker{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.FamilyRole, familyID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:         uuid.New(),
		ActiveFamilyID: familyID,
		Role:           role,
		JTI:            session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestInvitePreviewIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invites/abc123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.FamilyRoleViewer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestFamilyScopedRouteRequiresFamilyContext(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	noFamily := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	noFamily.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.FamilyRoleViewer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, noFamily)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without family got %d", resp.Code)
	}

	familyID := uuid.New()
	withFamily := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	withFamily.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.FamilyRoleMember, &familyID))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, withFamily)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with family got %d", resp.Code)
	}
}
