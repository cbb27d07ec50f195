package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/handler"
	"github.com/runsapi/runs-api/internal/middleware"
)

// CreateRunBodyLimit caps the create body in bytes
const CreateRunBodyLimit = 1024

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, cfg *config.Config, runs *handler.RunsHandler, health *handler.HealthHandler) {
	// Operational routes
	if health != nil {
		health.RegisterRoutes(app)
	}
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group(cfg.Server.APIPrefix)
	{
		api.Post("/runs/:scope", middleware.BodyLimit(CreateRunBodyLimit), runs.CreateRun)
		api.Get("/runs/:scope", runs.ListRuns)
	}
}
