package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/handler"
	pgrepo "github.com/runsapi/runs-api/internal/repository/postgres"
	redisrepo "github.com/runsapi/runs-api/internal/repository/redis"
	"github.com/runsapi/runs-api/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Databases *Databases

	// Repositories
	RunRepo  *pgrepo.RunRepository
	RunCache *redisrepo.RunCache

	// Services
	RunService *service.RunService

	// Handlers
	RunsHandler   *handler.RunsHandler
	HealthHandler *handler.HealthHandler
}

// initDependencies initializes all dependencies
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	dbs, err := initDatabases(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Databases: dbs,
	}

	// Repositories
	deps.RunRepo = pgrepo.NewRunRepository(dbs.Postgres)

	// The service and health handler take interfaces; a nil *RunCache or
	// *RedisDB must not be passed as a non-nil interface value.
	var (
		cache      service.RunCache
		redisCheck handler.Pinger
	)
	if dbs.Redis != nil {
		deps.RunCache = redisrepo.NewRunCache(dbs.Redis, cfg.Redis.CacheTTL, logger)
		cache = deps.RunCache
		redisCheck = dbs.Redis
	}

	// Services
	deps.RunService = service.NewRunService(deps.RunRepo, cache, logger)

	// Handlers
	deps.RunsHandler = handler.NewRunsHandler(deps.RunService, logger)
	deps.HealthHandler = handler.NewHealthHandler(dbs.Postgres, redisCheck, cfg.Tracing.ServiceVersion)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Databases != nil {
		d.Databases.Close()
	}
}
