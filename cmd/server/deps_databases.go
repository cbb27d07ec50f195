package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/pkg/database"
)

// Databases holds all database connections
type Databases struct {
	Postgres *database.PostgresDB
	// Redis is nil when caching is disabled
	Redis *database.RedisDB
}

// initDatabases opens the connection pool, applies migrations when
// enabled and connects to Redis when caching is enabled.
func initDatabases(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Databases, error) {
	dbs := &Databases{}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Postgres.DSN(), logger); err != nil {
			return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
	}

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	dbs.Postgres = pgDB

	if cfg.Redis.Enabled {
		redisDB, err := database.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			dbs.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		dbs.Redis = redisDB
	}

	return dbs, nil
}

// Close closes all database connections
func (d *Databases) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
