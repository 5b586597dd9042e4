package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/api/http/handlers"
	"github.com/smartcommunity/portal/internal/auth"
	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/observability"
	"github.com/smartcommunity/portal/internal/persistence"
	"github.com/smartcommunity/portal/internal/repository"
	"github.com/smartcommunity/portal/internal/service"
)

// AppDependencies is everything the HTTP surface needs.
type AppDependencies struct {
	App      config.AppConfig
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	UserRepo repository.UserRepository
	Auth     *service.AuthService
	Visitors *service.VisitorService
}

// NewApp builds the Fiber application with middlewares and routes registered.
func NewApp(deps AppDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               deps.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, deps.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.App.Name, deps.App.Version, deps.Postgres, deps.Redis),
		Users:          handlers.NewUsersHandler(deps.Auth),
		Visitors:       handlers.NewVisitorsHandler(deps.Visitors),
		AuthMiddleware: auth.NewAuthMiddleware(deps.Auth.TokenManager(), deps.UserRepo),
	})
	return app
}
