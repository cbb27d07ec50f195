package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
)

// RedisDB wraps a Redis client
type RedisDB struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        32,
		MinIdleConns:    2,
		PoolTimeout:     4 * time.Second,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("connected to Redis",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return &RedisDB{Client: client}, nil
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.Client != nil {
		return db.Client.Close()
	}
	return nil
}

// Ping checks the connection
func (db *RedisDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx).Err()
}

// Get gets a value by key
func (db *RedisDB) Get(ctx context.Context, key string) ([]byte, error) {
	return db.Client.Get(ctx, key).Bytes()
}

// Del deletes one or more keys
func (db *RedisDB) Del(ctx context.Context, keys ...string) error {
	return db.Client.Del(ctx, keys...).Err()
}

// Incr increments the integer at key and refreshes its expiration
func (db *RedisDB) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := db.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if expiration > 0 {
			pipe.Expire(ctx, key, expiration)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// setIfEqual writes KEYS[2] only while KEYS[1] holds ARGV[1]. A missing
// KEYS[1] reads as "0". ARGV[3] is the expiration in milliseconds, 0 for
// none.
var setIfEqual = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// SetIfEqual atomically sets key to value if guard currently holds want.
// It reports whether the value was written.
func (db *RedisDB) SetIfEqual(ctx context.Context, guard, want, key string, value []byte, expiration time.Duration) (bool, error) {
	n, err := setIfEqual.Run(ctx, db.Client, []string{guard, key}, want, value, expiration.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IsNil reports whether err is the Redis "key does not exist" reply
func IsNil(err error) bool {
	return err == redis.Nil
}
