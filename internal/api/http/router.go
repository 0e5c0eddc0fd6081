package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Categories     *handlers.CategoriesHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Optional)
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	signedIn := auth.RequireRole()

	api.Post("/auth", cfg.Auth.Handle)

	api.Get("/users", cfg.Users.List)
	api.Post("/users", cfg.Users.Create)
	api.Get("/users/:id", cfg.Users.Get)
	api.Put("/users/:id", cfg.Users.Update)
	api.Delete("/users/:id", adminOnly, cfg.Users.Delete)

	api.Get("/categories", cfg.Categories.List)
	api.Post("/categories", cfg.Categories.Create)
	api.Put("/categories/:id", cfg.Categories.Update)
	api.Delete("/categories/:id", adminOnly, cfg.Categories.Delete)

	api.Get("/tickets", cfg.Tickets.List)
	api.Post("/tickets", cfg.Tickets.Create)
	api.Get("/tickets/:id", cfg.Tickets.Get)
	api.Put("/tickets/:id", signedIn, cfg.Tickets.Update)
	api.Delete("/tickets/:id", adminOnly, cfg.Tickets.Delete)
	api.Post("/tickets/:id/vote", signedIn, cfg.Tickets.Vote)
	api.Post("/tickets/:id/assign", auth.RequireStaff(), cfg.Tickets.Assign)

	api.Get("/comments", cfg.Comments.List)
	api.Post("/comments", cfg.Comments.Create)

	admin := api.Group("/admin", adminOnly)
	admin.Get("/overview", cfg.Admin.Overview)
	admin.Get("/store", cfg.Admin.Store)
}
