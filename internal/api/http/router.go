package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/http/handlers"
)

// BotRouteConfig bundles dependencies for the bot status server.
type BotRouteConfig struct {
	Status *handlers.StatusHandler
}

// RegisterBotRoutes wires the bot process HTTP surface.
func RegisterBotRoutes(app *fiber.App, cfg BotRouteConfig) {
	app.Get("/", cfg.Status.Root)
	app.Get("/health", cfg.Status.Health)
}

// DashboardRouteConfig bundles dependencies for the dashboard API.
type DashboardRouteConfig struct {
	Health     *handlers.HealthHandler
	Archive    *handlers.ArchiveHandler
	IngestAuth fiber.Handler
}

// RegisterDashboardRoutes wires the dashboard HTTP surface.
func RegisterDashboardRoutes(app *fiber.App, cfg DashboardRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/archive", cfg.IngestAuth, cfg.Archive.Ingest)
	api.Get("/stats", cfg.Archive.Stats)
	api.Get("/tickets", cfg.Archive.List)
	api.Get("/tickets/:id/transcript", cfg.Archive.Transcript)
}
