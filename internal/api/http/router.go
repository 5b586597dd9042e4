package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcommunity/portal/internal/api/http/handlers"
	"github.com/smartcommunity/portal/internal/auth"
	"github.com/smartcommunity/portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Visitors       *handlers.VisitorsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.Me)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Put("/approve/:id", cfg.Users.Approve)
	users.Put("/deny/:id", cfg.Users.Deny)

	visitors := api.Group("/visitors", cfg.AuthMiddleware.Handle)
	visitors.Post("/generate", auth.RequireRole(domain.RoleResident), cfg.Visitors.Generate)
	visitors.Get("/user", auth.RequireAnyRole(), cfg.Visitors.ListMine)

	gate := auth.RequireRole(domain.RoleSecurity, domain.RoleAdmin)
	visitors.Post("/verify", gate, cfg.Visitors.Verify)
	visitors.Get("/pending", gate, cfg.Visitors.ListPending)
	visitors.Put("/checkin/:id", gate, cfg.Visitors.CheckIn)
}
