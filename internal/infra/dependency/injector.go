// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/annoylog/backend/config"
	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/application/usecase/auth"
	"github.com/annoylog/backend/internal/application/usecase/category"
	"github.com/annoylog/backend/internal/application/usecase/entry"
	"github.com/annoylog/backend/internal/application/usecase/guest"
	"github.com/annoylog/backend/internal/application/usecase/migration"
	"github.com/annoylog/backend/internal/application/usecase/session"
	"github.com/annoylog/backend/internal/application/usecase/stats"
	"github.com/annoylog/backend/internal/application/usecase/subscription"
	"github.com/annoylog/backend/internal/infra/db"
	"github.com/annoylog/backend/internal/infra/server/router"
	"github.com/annoylog/backend/internal/integration/adapters"
	"github.com/annoylog/backend/internal/integration/email"
	"github.com/annoylog/backend/internal/integration/entrypoint/controller"
	"github.com/annoylog/backend/internal/integration/entrypoint/middleware"
	"github.com/annoylog/backend/internal/integration/localstore"
	"github.com/annoylog/backend/internal/integration/metrics"
	"github.com/annoylog/backend/internal/integration/persistence"
)

// Externals are the collaborators created outside the injector because they
// own connections or are replaced in tests.
type Externals struct {
	LocalStore     adapter.LocalStore
	Billing        adapter.BillingService
	Outbox         adapter.MailOutbox
	PasswordHasher adapter.PasswordHasher
	Metrics        *metrics.Collector
}

// Injector holds all application dependencies.
type Injector struct {
	Config  *config.Config
	DB      *gorm.DB
	Router  *router.Router
	Metrics *metrics.Collector
	Mail    *email.Notifier

	// Exposed for tests that need to reset limits between scenarios.
	LoginRateLimiter *middleware.RateLimiter
	GuestRateLimiter *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// Zero-valued Externals fields get production defaults, except LocalStore and
// Billing which are required.
func NewInjector(cfg *config.Config, conn *gorm.DB, ext Externals) (*Injector, error) {
	if ext.LocalStore == nil {
		return nil, fmt.Errorf("local store is required")
	}
	if ext.Billing == nil {
		return nil, fmt.Errorf("billing service is required")
	}
	if ext.Metrics == nil {
		ext.Metrics = metrics.NewCollector()
	}
	if ext.Outbox == nil {
		ext.Outbox = persistence.NewOutboundMailRepository(conn)
	}
	if ext.PasswordHasher == nil {
		ext.PasswordHasher = adapters.NewPasswordHasher(adapters.DefaultBcryptCost)
	}

	// Repositories
	userRepo := persistence.NewUserRepository(conn)
	tokenRepo := persistence.NewTokenRepository(conn)
	categoryRepo := persistence.NewCategoryRepository(conn)
	entryRepo := persistence.NewEntryRepository(conn)
	subscriptionRepo := persistence.NewSubscriptionRepository(conn)
	migrationRepo := persistence.NewGuestMigrationRepository(conn)

	// Services
	staging := localstore.NewGuestStaging(ext.LocalStore)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, tokenRepo, adapters.TokenTTL{
		Access:  cfg.JWT.AccessTokenExpiry,
		Refresh: cfg.JWT.RefreshTokenExpiry,
	})
	resetTokenService := adapters.NewPasswordResetTokenService(tokenRepo, cfg.JWT.ResetTokenExpiry)
	notifier := email.NewNotifier(ext.Outbox, cfg.Email.AppBaseURL)

	// Entitlement and migration
	fetchEntitlement := subscription.NewFetchEntitlementStatusUseCase(subscriptionRepo, staging, ext.Metrics, cfg.Entitlement.CacheTTL)
	syncEntitlement := subscription.NewSyncEntitlementStatusUseCase(ext.Billing, subscriptionRepo, staging, ext.Metrics, cfg.Entitlement.ID)
	migrateGuestData := migration.NewMigrateGuestDataUseCase(
		staging,
		categoryRepo,
		entryRepo,
		migrationRepo,
		userRepo,
		notifier,
		ext.Metrics,
		cfg.Migration.ClaimTTL,
	)
	startSession := session.NewStartSessionUseCase(migrateGuestData, syncEntitlement)

	// Account
	deleteAccountUseCase := auth.NewDeleteAccountUseCase(
		userRepo,
		ext.PasswordHasher,
		tokenService,
		entryRepo,
		categoryRepo,
		subscriptionRepo,
		migrationRepo,
	)

	// Journal
	listCategoriesUseCase := category.NewListCategoriesUseCase(categoryRepo)
	createCategoryUseCase := category.NewCreateCategoryUseCase(categoryRepo)
	updateCategoryUseCase := category.NewUpdateCategoryUseCase(categoryRepo)
	deleteCategoryUseCase := category.NewDeleteCategoryUseCase(categoryRepo, entryRepo)

	createEntryUseCase := entry.NewCreateEntryUseCase(entryRepo, categoryRepo)
	listEntriesUseCase := entry.NewListEntriesUseCase(entryRepo)
	updateEntryUseCase := entry.NewUpdateEntryUseCase(entryRepo, categoryRepo)
	deleteEntryUseCase := entry.NewDeleteEntryUseCase(entryRepo)

	streakUseCase := stats.NewGetStreakUseCase(entryRepo, userRepo)
	calendarUseCase := stats.NewGetCalendarUseCase(entryRepo, userRepo)
	insightsUseCase := stats.NewGetInsightsUseCase(entryRepo, categoryRepo, userRepo)

	// Guest staging
	startGuestUseCase := guest.NewStartGuestSessionUseCase()
	stageCategoryUseCase := guest.NewStageCategoryUseCase(staging)
	stageEntryUseCase := guest.NewStageEntryUseCase(staging)
	listStagedUseCase := guest.NewListStagedUseCase(staging)
	deleteStagedEntryUseCase := guest.NewDeleteStagedEntryUseCase(staging)

	// Controllers
	controllers := router.Controllers{
		Health: controller.NewHealthController(
			func(ctx context.Context) error { return db.Ping(ctx, conn) },
			ext.LocalStore.Ping,
		),
		Auth: controller.NewAuthController(controller.AuthUseCases{
			Register:       auth.NewRegisterUserUseCase(userRepo, ext.PasswordHasher, tokenService),
			Login:          auth.NewLoginUserUseCase(userRepo, ext.PasswordHasher, tokenService),
			Refresh:        auth.NewRefreshTokenUseCase(tokenService),
			Logout:         auth.NewLogoutUserUseCase(tokenService, staging),
			ForgotPassword: auth.NewForgotPasswordUseCase(userRepo, resetTokenService, notifier, cfg.Email.AppBaseURL),
			ResetPassword:  auth.NewResetPasswordUseCase(userRepo, ext.PasswordHasher, resetTokenService, tokenService),
			StartSession:   startSession,
		}),
		User: controller.NewUserController(
			auth.NewGetProfileUseCase(userRepo),
			auth.NewUpdateProfileUseCase(userRepo),
			deleteAccountUseCase,
		),
		Guest: controller.NewGuestController(
			startGuestUseCase,
			stageCategoryUseCase,
			stageEntryUseCase,
			listStagedUseCase,
			deleteStagedEntryUseCase,
		),
		Entry: controller.NewEntryController(
			createEntryUseCase,
			listEntriesUseCase,
			updateEntryUseCase,
			deleteEntryUseCase,
		),
		Category: controller.NewCategoryController(
			listCategoriesUseCase,
			createCategoryUseCase,
			updateCategoryUseCase,
			deleteCategoryUseCase,
		),
		Stats:        controller.NewStatsController(streakUseCase, calendarUseCase, insightsUseCase),
		Subscription: controller.NewSubscriptionController(fetchEntitlement, syncEntitlement, startSession),
	}

	// Middleware
	rl := cfg.RateLimit
	loginRateLimiter := middleware.NewRateLimiter(rl.AuthPerMinute, rl.AuthBurst, rl.Enabled)
	guestRateLimiter := middleware.NewRateLimiter(rl.GuestPerMinute, rl.GuestBurst, rl.Enabled)

	middlewares := router.Middlewares{
		Auth:             middleware.NewAuthMiddleware(tokenService),
		ProGate:          middleware.NewProGate(fetchEntitlement),
		LoginRateLimiter: loginRateLimiter,
		GuestRateLimiter: guestRateLimiter,
	}

	return &Injector{
		Config:           cfg,
		DB:               conn,
		Router:           router.NewRouter(controllers, middlewares, ext.Metrics.Handler()),
		Metrics:          ext.Metrics,
		Mail:             notifier,
		LoginRateLimiter: loginRateLimiter,
		GuestRateLimiter: guestRateLimiter,
	}, nil
}

// NewLocalStore opens the local store selected by cfg.Driver. The returned
// close function releases the underlying connection.
func NewLocalStore(ctx context.Context, cfg *config.Config) (adapter.LocalStore, func() error, error) {
	switch cfg.LocalStore.Driver {
	case "redis":
		client, err := localstore.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return localstore.NewRedisStore(client, cfg.LocalStore.KeyPrefix, cfg.LocalStore.KeyTTL), client.Close, nil
	case "sqlite":
		store, err := localstore.OpenSQLiteStore(cfg.LocalStore.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown local store driver %q", cfg.LocalStore.Driver)
	}
}
