package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pod-tracker/internal/api/http/handlers"
	"github.com/spec-kit/pod-tracker/internal/auth"
	"github.com/spec-kit/pod-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Pods           *handlers.PodsHandler
	Notifications  *handlers.NotificationsHandler
	Identities     *handlers.IdentitiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	pods := protected.Group("/pods")
	pods.Post("", cfg.Pods.CreatePod)
	pods.Get("", cfg.Pods.ListPods)
	pods.Get("/:id", cfg.Pods.GetPod)
	pods.Patch("/:id", cfg.Pods.UpdatePod)
	pods.Post("/:id/archive", cfg.Pods.ArchivePod)
	pods.Post("/:id/restore", cfg.Pods.RestorePod)
	pods.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Pods.DeletePod)
	pods.Get("/:id/timeline", cfg.Pods.GetTimeline)
	pods.Get("/:id/ledger", cfg.Pods.GetLedger)
	pods.Post("/:id/issues", cfg.Pods.AddIssue)
	pods.Get("/:id/issues", cfg.Pods.ListIssues)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	identities := protected.Group("/identities")
	identities.Get("", cfg.Identities.List)
	identities.Get("/:id", cfg.Identities.Get)
	identities.Post("/merge", auth.RequireRole(domain.RoleAdmin), cfg.Identities.Merge)
}
