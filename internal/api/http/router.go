package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Uploads        *handlers.UploadsHandler
	Reports        *handlers.ReportsHandler
	Users          *handlers.UsersHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/signup", cfg.Auth.Signup)
	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/logout", cfg.Auth.Logout)

	complaints := protected.Group("/complaints")
	complaints.Post("", auth.RequireRole(domain.RoleCustomer), cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Complaints.Update)

	protected.Post("/uploads", cfg.Uploads.Upload)
	protected.Get("/notifications", cfg.Notifications.List)

	agent := protected.Group("/agent", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin))
	agent.Get("/reports/dashboard", cfg.Reports.AgentDashboard)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/reports/dashboard", cfg.Reports.AdminDashboard)
	admin.Get("/complaints/export", cfg.Reports.ExportCSV)
	admin.Get("/users", cfg.Users.List)
}
