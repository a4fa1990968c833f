package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enrollment-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Enrollment *handlers.EnrollmentHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/chat", cfg.Enrollment.Chat)
	api.Get("/session/:id", cfg.Enrollment.GetSession)
	api.Get("/ticket/:session_id", cfg.Enrollment.GetTicket)
}
