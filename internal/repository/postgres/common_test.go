package postgres

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/pkg/database"
)

// getTestDB returns a database connection for integration tests.
// Skips the test if the database is not available.
func getTestDB(t *testing.T) *database.PostgresDB {
	// Check if we're running integration tests
	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if cfg.Database == "" {
		cfg.Database = "test_runs"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	ctx := context.Background()
	log := zap.NewNop()

	if err := database.Migrate(ctx, cfg.DSN(), log); err != nil {
		t.Skipf("Skipping integration test: failed to migrate PostgreSQL: %v", err)
		return nil
	}

	db, err := database.NewPostgres(ctx, cfg, log)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}
	t.Cleanup(db.Close)

	return db
}

// cleanupRuns removes test runs from the database
func cleanupRuns(t *testing.T, db *database.PostgresDB, scopes ...string) {
	ctx := context.Background()
	for _, scope := range scopes {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM runs WHERE scope = $1", scope)
	}
}
