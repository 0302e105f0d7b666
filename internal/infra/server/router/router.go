// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/integration/entrypoint/controller"
	"github.com/annoylog/backend/internal/integration/entrypoint/middleware"
)

// Controllers groups the HTTP handlers mounted by the router.
type Controllers struct {
	Health       *controller.HealthController
	Auth         *controller.AuthController
	User         *controller.UserController
	Guest        *controller.GuestController
	Entry        *controller.EntryController
	Category     *controller.CategoryController
	Stats        *controller.StatsController
	Subscription *controller.SubscriptionController
}

// Middlewares groups the shared middleware instances.
type Middlewares struct {
	Auth             *middleware.AuthMiddleware
	ProGate          *middleware.ProGate
	LoginRateLimiter *middleware.RateLimiter
	GuestRateLimiter *middleware.RateLimiter
}

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine         *gin.Engine
	controllers    Controllers
	middlewares    Middlewares
	metricsHandler http.Handler
}

// NewRouter creates a new router instance with all dependencies.
// metricsHandler may be nil, in which case /metrics is not mounted.
func NewRouter(controllers Controllers, middlewares Middlewares, metricsHandler http.Handler) *Router {
	return &Router{
		controllers:    controllers,
		middlewares:    middlewares,
		metricsHandler: metricsHandler,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	// Default middleware: logger and recovery
	r.engine = gin.Default()

	r.setupOperationalRoutes()
	r.setupAPIRoutes()

	return r.engine
}

func (r *Router) setupOperationalRoutes() {
	r.engine.GET("/health", r.controllers.Health.Check)
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	ctrl := r.controllers
	mw := r.middlewares

	if ctrl.Auth != nil {
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.limit(mw.LoginRateLimiter), ctrl.Auth.Register)
			auth.POST("/login", r.limit(mw.LoginRateLimiter), ctrl.Auth.Login)
			auth.POST("/refresh", ctrl.Auth.RefreshToken)
			auth.POST("/logout", ctrl.Auth.Logout)
			auth.POST("/forgot-password", r.limit(mw.LoginRateLimiter), ctrl.Auth.ForgotPassword)
			auth.POST("/reset-password", ctrl.Auth.ResetPassword)
		}
	}

	// Guest staging, keyed by X-Device-ID instead of a bearer token
	if ctrl.Guest != nil {
		guest := v1.Group("/guest")
		guest.Use(r.limit(mw.GuestRateLimiter))
		{
			guest.POST("/session", ctrl.Guest.StartSession)

			device := guest.Group("")
			device.Use(middleware.RequireDevice())
			device.GET("/staged", ctrl.Guest.List)
			device.POST("/categories", ctrl.Guest.CreateCategory)
			device.POST("/entries", ctrl.Guest.CreateEntry)
			device.DELETE("/entries/:id", ctrl.Guest.DeleteEntry)
		}
	}

	if mw.Auth == nil {
		return
	}

	if ctrl.Entry != nil {
		entries := v1.Group("/entries")
		entries.Use(mw.Auth.Authenticate())
		{
			entries.GET("", ctrl.Entry.List)
			entries.POST("", ctrl.Entry.Create)
			entries.PATCH("/:id", ctrl.Entry.Update)
			entries.DELETE("/:id", ctrl.Entry.Delete)
		}
	}

	if ctrl.Category != nil {
		categories := v1.Group("/categories")
		categories.Use(mw.Auth.Authenticate())
		{
			categories.GET("", ctrl.Category.List)
			categories.POST("", ctrl.Category.Create)
			categories.PATCH("/:id", ctrl.Category.Update)
			categories.DELETE("/:id", ctrl.Category.Delete)
		}
	}

	if ctrl.Stats != nil {
		stats := v1.Group("/stats")
		stats.Use(mw.Auth.Authenticate())
		{
			stats.GET("/streak", ctrl.Stats.Streak)
			stats.GET("/calendar", ctrl.Stats.Calendar)
			if mw.ProGate != nil {
				stats.GET("/insights", mw.ProGate.RequirePro(), ctrl.Stats.Insights)
			}
		}
	}

	if ctrl.Subscription != nil {
		sub := v1.Group("/subscription")
		sub.Use(mw.Auth.Authenticate())
		{
			sub.GET("", ctrl.Subscription.Get)
			sub.POST("/sync", ctrl.Subscription.Sync)
		}

		v1.POST("/session/start", mw.Auth.Authenticate(), ctrl.Subscription.StartSession)
	}

	if ctrl.User != nil {
		users := v1.Group("/users")
		users.Use(mw.Auth.Authenticate())
		{
			users.GET("/me", ctrl.User.GetProfile)
			users.PATCH("/me", ctrl.User.UpdateProfile)
			users.DELETE("/me", ctrl.User.DeleteAccount)
		}
	}
}

// limit returns the limiter's middleware, or a pass-through when none is configured.
func (r *Router) limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
