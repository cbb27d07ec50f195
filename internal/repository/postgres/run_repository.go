package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/runsapi/runs-api/internal/domain"
	"github.com/runsapi/runs-api/internal/pkg/database"
	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
)

// RunRepository handles run data operations in PostgreSQL
type RunRepository struct {
	db *database.PostgresDB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.PostgresDB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run for the scope and returns it as stored
func (r *RunRepository) Create(ctx context.Context, scope string, target domain.RunTarget) (*domain.Run, error) {
	query := `
		INSERT INTO runs (target, scope)
		VALUES ($1, $2)
		RETURNING id, target, ran_at
	`

	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer conn.Release()

	run, err := scanRun(conn.QueryRow(ctx, query, string(target), scope))
	if err != nil {
		return nil, classify("failed to create run", err)
	}

	return run, nil
}

// ListByScope returns every run recorded for the scope, oldest first
func (r *RunRepository) ListByScope(ctx context.Context, scope string) ([]domain.Run, error) {
	query := `
		SELECT id, target, ran_at
		FROM runs
		WHERE scope = $1
		ORDER BY id ASC
	`

	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, scope)
	if err != nil {
		return nil, classify("failed to list runs", err)
	}
	defer rows.Close()

	runs := make([]domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, classify("failed to scan run", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate runs", err)
	}

	return runs, nil
}

// scanRun reads one (id, target, ran_at) row
func scanRun(row pgx.Row) (*domain.Run, error) {
	var (
		run    domain.Run
		target string
	)

	if err := row.Scan(&run.ID, &target, &run.CreatedAt); err != nil {
		return nil, err
	}

	category, ok := domain.ParseRunTarget(target)
	if !ok {
		return nil, apperrors.StorageDecode(fmt.Errorf("unknown run target %q in row %d", target, run.ID))
	}
	run.Category = category

	return &run, nil
}

// classify tags a storage failure as a decode failure when a row could
// not be converted, and as a generic storage failure otherwise.
func classify(op string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var scanErr pgx.ScanArgError
	if errors.As(err, &scanErr) {
		return apperrors.StorageDecode(err)
	}

	return apperrors.Storage(fmt.Errorf("%s: %w", op, err))
}
