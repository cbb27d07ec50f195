// Package server assembles the HTTP application: the fiber app, its
// middleware chain and the route table.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/handler"
	"github.com/runsapi/runs-api/internal/middleware"
)

const appName = "runs-api"

// Options carries everything New needs to build the app
type Options struct {
	Config        *config.Config
	Logger        *zap.Logger
	Tracer        trace.Tracer
	SentryEnabled bool

	Runs   *handler.RunsHandler
	Health *handler.HealthHandler
}

// New creates the fiber app with the full middleware chain and routes.
//
// Middleware order: Metrics, Trace, RequestContext, RecoverWithSentry,
// SentryMiddleware, CORS, RequestTimeout. Errors returned anywhere below
// Trace are handled there, so every failure is mapped once and the
// completion log and metrics see the final status.
func New(opts Options) *fiber.App {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(appName)
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		UnescapePath:          true,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          middleware.ErrorHandler(logger, opts.SentryEnabled),
	})

	if cfg.Metrics.Enabled {
		app.Use(middleware.Metrics(cfg.Metrics.Path))
	}
	app.Use(middleware.Trace(logger, tracer))
	app.Use(middleware.RequestContext())
	app.Use(middleware.RecoverWithSentry(logger, opts.SentryEnabled))
	if opts.SentryEnabled {
		app.Use(middleware.SentryMiddleware(true))
	}
	app.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	app.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	registerRoutes(app, cfg, opts.Runs, opts.Health)

	return app
}
