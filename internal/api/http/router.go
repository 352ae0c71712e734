package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/api/http/handlers"
	"github.com/spec-kit/querydesk/internal/api/web"
	"github.com/spec-kit/querydesk/internal/auth"
	"github.com/spec-kit/querydesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queries        *handlers.QueriesHandler
	Pages          *web.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	optional := cfg.AuthMiddleware.Optional
	app.Get("/", optional, cfg.Pages.Home)
	app.Get("/login", optional, cfg.Pages.LoginForm)
	app.Post("/login", cfg.Pages.Login)
	app.Get("/register", cfg.Pages.RegisterForm)
	app.Post("/register", cfg.Pages.Register)
	app.Post("/logout", optional, cfg.Pages.Logout)
	app.Get("/client", optional, cfg.Pages.Dashboard)
	app.Get("/support", optional, cfg.Pages.Dashboard)
	app.Post("/client/queries", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleClient), cfg.Pages.SubmitQuery)
	app.Post("/support/close", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSupport), cfg.Pages.CloseQuery)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	queries := api.Group("/queries", cfg.AuthMiddleware.Handle)
	queries.Post("", auth.RequireRole(domain.RoleClient), cfg.Queries.Create)
	queries.Get("", auth.RequireRole(domain.Roles...), cfg.Queries.List)
	queries.Get("/stats", auth.RequireRole(domain.RoleSupport), cfg.Queries.Stats)
	queries.Get("/:id", auth.RequireRole(domain.Roles...), cfg.Queries.Get)
	queries.Post("/:id/close", auth.RequireRole(domain.RoleSupport), cfg.Queries.Close)
}
