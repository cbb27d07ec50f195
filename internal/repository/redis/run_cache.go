package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/domain"
	"github.com/runsapi/runs-api/internal/pkg/circuitbreaker"
	"github.com/runsapi/runs-api/internal/pkg/database"
	"github.com/runsapi/runs-api/internal/pkg/metrics"
)

const (
	keyPrefix        = "runs:scope:"
	generationPrefix = "runs:gen:"
	breakerName      = "run_cache"

	// generationTTL bounds how long an idle scope's generation is kept.
	// It only has to outlive a single in-flight listing.
	generationTTL = 24 * time.Hour
)

// store is the subset of database.RedisDB used by the cache
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)
	SetIfEqual(ctx context.Context, guard, want, key string, value []byte, expiration time.Duration) (bool, error)
}

// RunCache caches run listings per scope in Redis. Each scope has a
// generation that Invalidate advances; a listing is only stored under the
// generation it was read at, so a snapshot taken before a create can never
// replace the invalidation that create made.
//
// Calls go through a circuit breaker, so while Redis is failing they
// return circuitbreaker.ErrOpen without a round trip.
type RunCache struct {
	store   store
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
}

// NewRunCache creates a new run cache
func NewRunCache(db *database.RedisDB, ttl time.Duration, log *zap.Logger) *RunCache {
	return newRunCache(db, ttl, log)
}

func newRunCache(s store, ttl time.Duration, log *zap.Logger) *RunCache {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := circuitbreaker.DefaultConfig(breakerName)
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.SetBreakerState(name, int(to))
		log.Warn("cache circuit breaker state changed",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}

	return &RunCache{
		store:   s,
		ttl:     ttl,
		breaker: circuitbreaker.New(cfg),
	}
}

// Get returns the cached listing for scope. The boolean is false on a miss.
func (c *RunCache) Get(ctx context.Context, scope string) ([]domain.Run, bool, error) {
	var raw []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = c.store.Get(ctx, key(scope))
		if database.IsNil(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached runs: %w", err)
	}
	if raw == nil {
		return nil, false, nil
	}

	runs := make([]domain.Run, 0)
	if err := json.Unmarshal(raw, &runs); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached runs: %w", err)
	}

	return runs, true, nil
}

// Generation returns scope's current generation, 0 if it was never
// invalidated.
func (c *RunCache) Generation(ctx context.Context, scope string) (int64, error) {
	var raw []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = c.store.Get(ctx, generationKey(scope))
		if database.IsNil(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	if raw == nil {
		return 0, nil
	}

	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to decode cache generation: %w", err)
	}
	return gen, nil
}

// Set caches the listing for scope if scope is still at generation gen.
// A listing read before a later Invalidate is dropped silently.
func (c *RunCache) Set(ctx context.Context, scope string, gen int64, runs []domain.Run) error {
	raw, err := json.Marshal(runs)
	if err != nil {
		return fmt.Errorf("failed to encode runs: %w", err)
	}

	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		_, err := c.store.SetIfEqual(ctx, generationKey(scope), strconv.FormatInt(gen, 10), key(scope), raw, c.ttl)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to cache runs: %w", err)
	}
	return nil
}

// Invalidate advances scope's generation and drops its cached listing
func (c *RunCache) Invalidate(ctx context.Context, scope string) error {
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		if _, err := c.store.Incr(ctx, generationKey(scope), generationTTL); err != nil {
			return err
		}
		return c.store.Del(ctx, key(scope))
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cached runs: %w", err)
	}
	return nil
}

func key(scope string) string {
	return keyPrefix + scope
}

func generationKey(scope string) string {
	return generationPrefix + scope
}
