package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/pkg/metrics"
)

// PostgresDB wraps a PostgreSQL connection pool
type PostgresDB struct {
	Pool   *pgxpool.Pool
	tracer *queryTracer
}

// NewPostgres creates a new PostgreSQL connection pool
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	tracer := newQueryTracer(log, log.Core().Enabled(zap.DebugLevel))
	poolConfig.ConnConfig.Tracer = tracer

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("connected to PostgreSQL",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)

	return &PostgresDB{Pool: pool, tracer: tracer}, nil
}

// Close closes the connection pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping verifies a connection can be acquired and used
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// QueryMetrics returns a snapshot of the query counters
func (db *PostgresDB) QueryMetrics() QueryMetrics {
	if db.tracer == nil {
		return QueryMetrics{}
	}
	return db.tracer.GetMetrics()
}

// QueryMetrics holds cumulative query counters for one pool
type QueryMetrics struct {
	TotalQueries    int64
	SlowQueries     int64
	FailedQueries   int64
	TotalDurationMs int64
}

// queryTracer implements pgx.QueryTracer for logging and metrics
type queryTracer struct {
	logger      *zap.Logger
	enableDebug bool

	mu      sync.Mutex
	metrics *QueryMetrics
}

type queryStartKey struct{}
type querySQLKey struct{}
type queryArgsKey struct{}

func newQueryTracer(log *zap.Logger, enableDebug bool) *queryTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &queryTracer{
		logger:      log,
		enableDebug: enableDebug,
		metrics:     &QueryMetrics{},
	}
}

// GetMetrics returns a copy of the current counters
func (t *queryTracer) GetMetrics() QueryMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.metrics
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now())
	ctx = context.WithValue(ctx, querySQLKey{}, data.SQL)
	ctx = context.WithValue(ctx, queryArgsKey{}, len(data.Args))
	return ctx
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}

	duration := time.Since(start)
	sql, _ := ctx.Value(querySQLKey{}).(string)
	operation := queryOperation(sql)

	t.mu.Lock()
	t.metrics.TotalQueries++
	t.metrics.TotalDurationMs += duration.Milliseconds()
	if data.Err != nil {
		t.metrics.FailedQueries++
	}
	if duration > metrics.SlowQueryThreshold {
		t.metrics.SlowQueries++
	}
	t.mu.Unlock()

	metrics.RecordDBQuery("postgres", operation, duration)

	switch {
	case data.Err != nil:
		metrics.RecordDBError("postgres", operation)
		t.logger.Warn("query failed",
			zap.Error(data.Err),
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("sql", truncateSQL(sql, 200)),
		)
	case duration > metrics.SlowQueryThreshold:
		t.logger.Warn("slow query detected",
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("sql", truncateSQL(sql, 200)),
		)
	case t.enableDebug:
		argCount, _ := ctx.Value(queryArgsKey{}).(int)
		t.logger.Debug("query executed",
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("sql", truncateSQL(sql, 200)),
			zap.Int("args", argCount),
			zap.Int64("rows", data.CommandTag.RowsAffected()),
		)
	}
}

// queryOperation returns the lowercased leading SQL keyword
func queryOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func truncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}
