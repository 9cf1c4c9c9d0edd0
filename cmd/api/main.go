package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/famlyhq/famly-backend/api/routes"
	"github.com/famlyhq/famly-backend/internal/auth"
	"github.com/famlyhq/famly-backend/internal/events"
	"github.com/famlyhq/famly-backend/internal/expenses"
	"github.com/famlyhq/famly-backend/internal/families"
	"github.com/famlyhq/famly-backend/internal/invites"
	"github.com/famlyhq/famly-backend/internal/memberships"
	"github.com/famlyhq/famly-backend/internal/shopping"
	"github.com/famlyhq/famly-backend/internal/tasks"
	"github.com/famlyhq/famly-backend/internal/users"
	"github.com/famlyhq/famly-backend/pkg/auth/session"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/db"
	"github.com/famlyhq/famly-backend/pkg/logger"
	"github.com/famlyhq/famly-backend/pkg/migrate"
	"github.com/famlyhq/famly-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	membershipRepo := memberships.NewRepository(gdb)
	familyRepo := families.NewRepository(gdb)
	inviteRepo := invites.NewRepository(gdb)
	taskRepo := tasks.NewRepository(gdb)
	eventRepo := events.NewRepository(gdb)
	shoppingRepo := shopping.NewRepository(gdb)
	expenseRepo := expenses.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        userRepo,
		MembershipsRepo: membershipRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	refreshService, err := auth.NewRefreshService(auth.RefreshServiceParams{
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create refresh service", err)
		os.Exit(1)
	}

	switchService, err := auth.NewSwitchFamilyService(auth.SwitchFamilyServiceParams{
		MembershipsRepo: membershipRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create switch-family service", err)
		os.Exit(1)
	}

	familyService, err := families.NewService(families.ServiceParams{
		TxRunner:    dbClient,
		Repo:        familyRepo,
		Memberships: membershipRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create family service", err)
		os.Exit(1)
	}

	inviteService, err := invites.NewService(invites.ServiceParams{
		TxRunner:     dbClient,
		Repo:         inviteRepo,
		Memberships:  membershipRepo,
		Families:     familyRepo,
		InviteConfig: cfg.Invites,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invite service", err)
		os.Exit(1)
	}

	taskService, err := tasks.NewService(tasks.ServiceParams{
		TxRunner:    dbClient,
		Repo:        taskRepo,
		Memberships: membershipRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create task service", err)
		os.Exit(1)
	}

	eventService, err := events.NewService(eventRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	shoppingService, err := shopping.NewService(shoppingRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopping service", err)
		os.Exit(1)
	}

	expenseService, err := expenses.NewService(expenseRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create expense service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:         authService,
			Register:     registerService,
			Refresh:      refreshService,
			SwitchFamily: switchService,
			Families:     familyService,
			Invites:      inviteService,
			Tasks:        taskService,
			Events:       eventService,
			Shopping:     shoppingService,
			Expenses:     expenseService,
			Memberships:  membershipRepo,
		}),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}
