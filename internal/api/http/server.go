package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/api/http/handlers"
	"github.com/spec-kit/querydesk/internal/api/web"
	"github.com/spec-kit/querydesk/internal/auth"
	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/observability"
	"github.com/spec-kit/querydesk/internal/persistence"
	"github.com/spec-kit/querydesk/internal/service"
)

// ServerDependencies bundles everything the HTTP server is built from.
type ServerDependencies struct {
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Auth     *service.AuthService
	Queries  *service.QueryService
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
}

// NewServer assembles the Fiber app with middlewares, pages and API routes.
func NewServer(deps ServerDependencies) (*fiber.App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pages, err := web.NewHandler(web.Dependencies{
		Auth:         deps.Auth,
		Queries:      deps.Queries,
		Logger:       logger,
		CookieSecure: deps.Config.Auth.CookieSecure,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               deps.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, deps.Config.App.RequestTimeout(), pages)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.Config.App.Name, deps.Config.App.Version, deps.Postgres, deps.Redis, deps.Metrics),
		Auth:           handlers.NewAuthHandler(deps.Auth),
		Queries:        handlers.NewQueriesHandler(deps.Queries),
		Pages:          pages,
		AuthMiddleware: auth.NewAuthMiddleware(deps.Auth),
	})
	return app, nil
}
