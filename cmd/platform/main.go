package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/campusworks/platform/pkg/auth"
	"github.com/campusworks/platform/pkg/config"
	"github.com/campusworks/platform/pkg/identity"
	"github.com/campusworks/platform/pkg/notification"
	"github.com/campusworks/platform/pkg/order"
	"github.com/campusworks/platform/pkg/password"
	"github.com/campusworks/platform/pkg/session"
	"github.com/campusworks/platform/pkg/throttle"
)

func main() {
	cfg := config.Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	emailNotifier, err := notification.NewEmailNotifier(cfg.EmailConfig.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating email notifier", "err", err)
		os.Exit(-1)
	}
	notificationManager := notification.NewNotificationManager(emailNotifier, cfg.BaseURL)

	hasher := password.NewBcryptHasher(cfg.PasswordConfig.BcryptCost)

	identityRepo := identity.NewPostgresIdentityRepository(pool)
	identityService := identity.NewService(identityRepo, hasher,
		identity.WithNotificationManager(notificationManager),
		identity.WithMinPasswordLength(cfg.PasswordConfig.MinLength),
	)

	loginThrottle := throttle.New(throttle.NewInMemoryStore(),
		throttle.WithMaxAttempts(cfg.ThrottleConfig.MaxAttempts),
		throttle.WithWindow(cfg.ThrottleConfig.Window()),
	)

	sessionManager := session.NewManager(session.NewInMemoryStore(),
		session.WithIdleTimeout(cfg.SessionConfig.IdleTimeout()),
	)

	authService := auth.NewAuthService(identityService, hasher, loginThrottle, sessionManager)
	authHandle := auth.NewHandle(authService,
		auth.WithCookieName(cfg.SessionConfig.CookieName),
		auth.WithSecureCookie(cfg.SessionConfig.CookieSecure),
	)
	authMiddleware := auth.NewMiddleware(authService, cfg.SessionConfig.CookieName)

	orderRepo := order.NewPostgresOrderRepository(pool)
	orderService := order.NewService(orderRepo,
		order.WithIdentityLookup(identityService),
		order.WithNotificationManager(notificationManager),
	)
	orderAccess := order.NewAccessService(orderRepo)
	orderHandle := order.NewHandle(orderService, orderAccess, authService, cfg.SessionConfig.CookieName)

	server.R.Group(func(r chi.Router) {
		r.Use(authMiddleware.EnsureSession)
		r.Use(authMiddleware.RequireCSRF)
		authHandle.RegisterRoutes(r)
	})

	server.R.Group(func(r chi.Router) {
		r.Use(authMiddleware.EnsureSession)
		r.Use(authMiddleware.RequireAuthenticated)
		r.Use(authMiddleware.RequireCSRF)
		orderHandle.RegisterRoutes(r)
	})

	server.Run()
}
