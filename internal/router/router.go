package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/config"
	"github.com/noah-isme/sikori-api/internal/handler"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB                *gorm.DB
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	StudentHandler    *handler.StudentHandler
	ActivityHandler   *handler.ActivityHandler
	AssessmentHandler *handler.AssessmentHandler
	ReportHandler     *handler.ReportHandler
	AuditHandler      *handler.AuditHandler
	BackupHandler     *handler.BackupHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.AuthHandler != nil {
		limiter := middleware.RateLimit("auth-login", cfg.LoginRateLimit, cfg.LoginRateWindow)
		deps.AuthHandler.Register(api.Group("/auth"), limiter, jwtMiddleware)
	}

	if deps.BackupHandler != nil {
		deps.BackupHandler.Register(api.Group("/backup"), jwtMiddleware)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware, middleware.RequireRole(models.RoleSuperAdmin)))
	}

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api.Group("/audit-logs", jwtMiddleware, middleware.RequireRole(models.RoleSuperAdmin)))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activities", jwtMiddleware))
	}

	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api.Group("/assessments", jwtMiddleware))
	}

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reports", jwtMiddleware))
	}
}
