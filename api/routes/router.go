package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/famlyhq/famly-backend/api/controllers"
	"github.com/famlyhq/famly-backend/api/middleware"
	"github.com/famlyhq/famly-backend/internal/auth"
	"github.com/famlyhq/famly-backend/internal/events"
	"github.com/famlyhq/famly-backend/internal/expenses"
	"github.com/famlyhq/famly-backend/internal/families"
	"github.com/famlyhq/famly-backend/internal/invites"
	"github.com/famlyhq/famly-backend/internal/shopping"
	"github.com/famlyhq/famly-backend/internal/tasks"
	"github.com/famlyhq/famly-backend/pkg/auth/session"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/db"
	"github.com/famlyhq/famly-backend/pkg/enums"
	"github.com/famlyhq/famly-backend/pkg/logger"
	"github.com/famlyhq/famly-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router mounts. Keeping it a struct saves
// main from a parameter list that grows with every feature.
type Services struct {
	Auth         auth.Service
	Register     auth.RegisterService
	Refresh      auth.RefreshService
	SwitchFamily auth.SwitchFamilyService
	Families     families.Service
	Invites      invites.Service
	Tasks        tasks.Service
	Events       events.Service
	Shopping     shopping.Service
	Expenses     expenses.Service
	Memberships  middleware.MembershipChecker
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Refresh, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Refresh, logg))
	})

	// Invite previews are public so an invitee can inspect the household
	// before creating an account.
	r.Get("/api/v1/invites/{code}", controllers.InvitePreview(svcs.Invites, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/v1/auth/switch-family", controllers.AuthSwitchFamily(svcs.SwitchFamily, logg))
		r.Get("/v1/users/me", controllers.AuthMe(svcs.Auth, logg))
		r.Get("/v1/families", controllers.FamilyList(svcs.Auth, logg))
		r.Post("/v1/families", controllers.FamilyCreate(svcs.Families, logg))
		r.Post("/v1/invites/{code}/accept", controllers.InviteAccept(svcs.Invites, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.FamilyContext(logg))

			adminOnly := middleware.RequireFamilyRoles(svcs.Memberships, logg, enums.FamilyRoleOwner, enums.FamilyRoleAdmin)

			r.Route("/v1/families/me", func(r chi.Router) {
				r.Get("/", controllers.FamilyProfile(svcs.Families, logg))
				r.Patch("/", controllers.FamilyUpdate(svcs.Families, logg))
				r.Get("/members", controllers.FamilyUsers(svcs.Families, logg))
				r.With(adminOnly).Patch("/members/{userId}/role", controllers.FamilyUpdateMemberRole(svcs.Families, logg))
				// Removal stays open to any member so people can leave on
				// their own; the service checks the admin rules for others.
				r.Delete("/members/{userId}", controllers.FamilyRemoveUser(svcs.Families, logg))

				r.Route("/invites", func(r chi.Router) {
					r.Get("/", controllers.InviteList(svcs.Invites, logg))
					r.With(adminOnly).Post("/", controllers.InviteCreate(svcs.Invites, logg))
					r.With(adminOnly).Post("/{inviteId}/revoke", controllers.InviteRevoke(svcs.Invites, logg))
				})
			})

			r.Route("/v1/tasks", func(r chi.Router) {
				r.Get("/", controllers.TaskList(svcs.Tasks, logg))
				r.Post("/", controllers.TaskCreate(svcs.Tasks, logg))
				r.Get("/{taskId}", controllers.TaskGet(svcs.Tasks, logg))
				r.Put("/{taskId}", controllers.TaskReplace(svcs.Tasks, logg))
				r.Post("/{taskId}/status", controllers.TaskCycleStatus(svcs.Tasks, logg))
				r.Delete("/{taskId}", controllers.TaskDelete(svcs.Tasks, logg))
			})

			r.Route("/v1/events", func(r chi.Router) {
				r.Get("/", controllers.EventList(svcs.Events, logg))
				r.Post("/", controllers.EventCreate(svcs.Events, logg))
				r.Put("/{eventId}", controllers.EventUpdate(svcs.Events, logg))
				r.Delete("/{eventId}", controllers.EventDelete(svcs.Events, logg))
			})

			r.Route("/v1/shopping/lists", func(r chi.Router) {
				r.Get("/", controllers.ShoppingLists(svcs.Shopping, logg))
				r.Post("/", controllers.ShoppingListCreate(svcs.Shopping, logg))
				r.Delete("/{listId}", controllers.ShoppingListDelete(svcs.Shopping, logg))
				r.Get("/{listId}/items", controllers.ShoppingItems(svcs.Shopping, logg))
				r.Post("/{listId}/items", controllers.ShoppingItemAdd(svcs.Shopping, logg))
				r.Post("/{listId}/items/{itemId}/toggle", controllers.ShoppingItemToggle(svcs.Shopping, logg))
				r.Delete("/{listId}/items/{itemId}", controllers.ShoppingItemDelete(svcs.Shopping, logg))
			})

			r.Route("/v1/expenses", func(r chi.Router) {
				r.Get("/", controllers.ExpenseList(svcs.Expenses, logg))
				r.Post("/", controllers.ExpenseCreate(svcs.Expenses, logg))
				r.Get("/summary", controllers.ExpenseSummary(svcs.Expenses, logg))
				r.Put("/{expenseId}", controllers.ExpenseUpdate(svcs.Expenses, logg))
				r.Delete("/{expenseId}", controllers.ExpenseDelete(svcs.Expenses, logg))
			})
		})
	})

	return r
}
