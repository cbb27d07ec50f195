package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncateSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		maxLen   int
		expected string
	}{
		{
			name:     "short SQL unchanged",
			sql:      "SELECT * FROM runs",
			maxLen:   100,
			expected: "SELECT * FROM runs",
		},
		{
			name:     "exactly at max length",
			sql:      "SELECT * FROM runs",
			maxLen:   18,
			expected: "SELECT * FROM runs",
		},
		{
			name:     "truncated with ellipsis",
			sql:      "SELECT * FROM runs WHERE id = 1",
			maxLen:   19,
			expected: "SELECT * FROM runs ...",
		},
		{
			name:     "empty string",
			sql:      "",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "max length of 0",
			sql:      "SELECT",
			maxLen:   0,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateSQL(tt.sql, tt.maxLen))
		})
	}
}

func TestQueryOperation(t *testing.T) {
	assert.Equal(t, "insert", queryOperation("INSERT INTO runs (target, scope) VALUES ($1, $2)"))
	assert.Equal(t, "select", queryOperation("\n\t SELECT id FROM runs"))
	assert.Equal(t, "unknown", queryOperation("   "))
}

func TestNewQueryTracer(t *testing.T) {
	t.Run("creates tracer with debug disabled", func(t *testing.T) {
		tracer := newQueryTracer(zap.NewNop(), false)
		assert.NotNil(t, tracer)
		assert.False(t, tracer.enableDebug)
		assert.NotNil(t, tracer.metrics)
	})

	t.Run("tolerates nil logger", func(t *testing.T) {
		tracer := newQueryTracer(nil, true)
		assert.NotNil(t, tracer.logger)
		assert.True(t, tracer.enableDebug)
	})
}

func TestQueryTracerGetMetrics(t *testing.T) {
	t.Run("returns copy of metrics", func(t *testing.T) {
		tracer := newQueryTracer(zap.NewNop(), false)
		tracer.metrics.TotalQueries = 10
		tracer.metrics.SlowQueries = 2
		tracer.metrics.FailedQueries = 1
		tracer.metrics.TotalDurationMs = 500

		snapshot := tracer.GetMetrics()
		tracer.metrics.TotalQueries = 11

		assert.Equal(t, int64(10), snapshot.TotalQueries)
		assert.Equal(t, int64(2), snapshot.SlowQueries)
		assert.Equal(t, int64(1), snapshot.FailedQueries)
		assert.Equal(t, int64(500), snapshot.TotalDurationMs)
	})

	t.Run("initial metrics are zero", func(t *testing.T) {
		assert.Equal(t, QueryMetrics{}, newQueryTracer(zap.NewNop(), false).GetMetrics())
	})
}

func TestQueryTracerTraceQueryStart(t *testing.T) {
	tracer := newQueryTracer(zap.NewNop(), false)

	data := pgx.TraceQueryStartData{
		SQL:  "INSERT INTO runs (target, scope) VALUES ($1, $2)",
		Args: []any{"baal", "season-1"},
	}

	ctx := tracer.TraceQueryStart(context.Background(), nil, data)

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	assert.True(t, ok)
	assert.False(t, start.IsZero())

	sql, ok := ctx.Value(querySQLKey{}).(string)
	assert.True(t, ok)
	assert.Equal(t, data.SQL, sql)

	argCount, ok := ctx.Value(queryArgsKey{}).(int)
	assert.True(t, ok)
	assert.Equal(t, 2, argCount)
}

func startedContext(start time.Time, sql string) context.Context {
	ctx := context.WithValue(context.Background(), queryStartKey{}, start)
	ctx = context.WithValue(ctx, querySQLKey{}, sql)
	return context.WithValue(ctx, queryArgsKey{}, 0)
}

func TestQueryTracerTraceQueryEnd(t *testing.T) {
	t.Run("increments total queries on success", func(t *testing.T) {
		tracer := newQueryTracer(zap.NewNop(), false)

		tracer.TraceQueryEnd(startedContext(time.Now(), "SELECT 1"), nil, pgx.TraceQueryEndData{
			CommandTag: pgconn.NewCommandTag("SELECT 1"),
		})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.TotalQueries)
		assert.Equal(t, int64(0), m.FailedQueries)
	})

	t.Run("counts and logs failed queries", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		tracer := newQueryTracer(zap.New(core), false)

		tracer.TraceQueryEnd(startedContext(time.Now(), "SELECT 1"), nil, pgx.TraceQueryEndData{
			Err: errors.New("connection refused"),
		})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.TotalQueries)
		assert.Equal(t, int64(1), m.FailedQueries)
		assert.Equal(t, 1, logs.FilterMessage("query failed").Len())
	})

	t.Run("counts and logs slow queries", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		tracer := newQueryTracer(zap.New(core), false)

		tracer.TraceQueryEnd(startedContext(time.Now().Add(-200*time.Millisecond), "SELECT 1"), nil, pgx.TraceQueryEndData{})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.SlowQueries)
		assert.GreaterOrEqual(t, m.TotalDurationMs, int64(200))
		assert.Equal(t, 1, logs.FilterMessage("slow query detected").Len())
	})

	t.Run("logs every query in debug mode", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		tracer := newQueryTracer(zap.New(core), true)

		tracer.TraceQueryEnd(startedContext(time.Now(), "SELECT 1"), nil, pgx.TraceQueryEndData{})

		assert.Equal(t, 1, logs.FilterMessage("query executed").Len())
	})

	t.Run("handles missing start time in context", func(t *testing.T) {
		tracer := newQueryTracer(zap.NewNop(), false)

		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

		assert.Equal(t, int64(0), tracer.GetMetrics().TotalQueries)
	})
}

func TestPostgresDB(t *testing.T) {
	t.Run("close handles nil pool", func(t *testing.T) {
		db := &PostgresDB{Pool: nil}
		db.Close()
	})

	t.Run("query metrics without tracer", func(t *testing.T) {
		db := &PostgresDB{}
		assert.Equal(t, QueryMetrics{}, db.QueryMetrics())
	})
}
