package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/domain"
	"github.com/runsapi/runs-api/internal/pkg/circuitbreaker"
	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
	"github.com/runsapi/runs-api/internal/pkg/metrics"
)

// RunRepository defines run repository operations
type RunRepository interface {
	Create(ctx context.Context, scope string, target domain.RunTarget) (*domain.Run, error)
	ListByScope(ctx context.Context, scope string) ([]domain.Run, error)
}

// RunCache defines the optional listing cache. Invalidate advances the
// scope's generation, and Set only stores a listing while the scope is
// still at the generation passed in.
type RunCache interface {
	Get(ctx context.Context, scope string) ([]domain.Run, bool, error)
	Generation(ctx context.Context, scope string) (int64, error)
	Set(ctx context.Context, scope string, gen int64, runs []domain.Run) error
	Invalidate(ctx context.Context, scope string) error
}

// RunService handles run recording and listing
type RunService struct {
	runRepo RunRepository
	cache   RunCache
	logger  *zap.Logger
}

// NewRunService creates a new run service. cache may be nil.
func NewRunService(runRepo RunRepository, cache RunCache, logger *zap.Logger) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunService{
		runRepo: runRepo,
		cache:   cache,
		logger:  logger,
	}
}

// Create records a run against the named target in scope
func (s *RunService) Create(ctx context.Context, scope, target string) (*domain.Run, error) {
	runTarget, ok := domain.ParseRunTarget(target)
	if !ok {
		return nil, apperrors.Validationf("unknown run target %q", target)
	}

	run, err := s.runRepo.Create(ctx, scope, runTarget)
	if err != nil {
		return nil, err
	}

	metrics.RecordRunCreated(string(run.Category))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, scope); err != nil {
			s.cacheFailed("failed to invalidate run cache", scope, err)
		}
	}

	return run, nil
}

// List returns every run recorded in scope, oldest first
func (s *RunService) List(ctx context.Context, scope string) ([]domain.Run, error) {
	if s.cache == nil {
		return s.listFromStorage(ctx, scope)
	}

	runs, ok, err := s.cache.Get(ctx, scope)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		s.cacheFailed("failed to read run cache", scope, err)
	case ok:
		metrics.RecordCacheLookup("hit")
		return runs, nil
	default:
		metrics.RecordCacheLookup("miss")
	}

	// Read the generation before storage: a create committed after this
	// point advances it and the snapshot below is not cached.
	gen, genErr := s.cache.Generation(ctx, scope)
	if genErr != nil {
		s.cacheFailed("failed to read run cache generation", scope, genErr)
	}

	runs, err = s.listFromStorage(ctx, scope)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, scope, gen, runs); err != nil {
			s.cacheFailed("failed to populate run cache", scope, err)
		}
	}

	return runs, nil
}

func (s *RunService) listFromStorage(ctx context.Context, scope string) ([]domain.Run, error) {
	runs, err := s.runRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = make([]domain.Run, 0)
	}
	return runs, nil
}

// cacheFailed logs a cache failure. The cache is optional, so failures
// never reach the caller. Calls rejected by an open breaker are expected
// while Redis is down and are logged at debug.
func (s *RunService) cacheFailed(msg, scope string, err error) {
	level := zap.WarnLevel
	if errors.Is(err, circuitbreaker.ErrOpen) || errors.Is(err, circuitbreaker.ErrTrialInFlight) {
		level = zap.DebugLevel
	}
	s.logger.Log(level, msg, zap.String("scope", scope), zap.Error(err))
}
