// Package cache keeps rendered pages for a short time, in redis when it is
// reachable and in process memory otherwise.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrCacheMiss        = errors.New("cache miss")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Store is a byte-valued key store with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix and reports how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Total number of page cache hits",
		},
		[]string{"prefix"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Total number of page cache misses",
		},
		[]string{"prefix"},
	)
)

// Options configure New.
type Options struct {
	RedisURL      string
	RedisPassword string
}

// New connects to redis when a URL is configured and answers a ping,
// otherwise it falls back to an in-memory store.
func New(opts Options, logger *zap.Logger) (Store, error) {
	if opts.RedisURL == "" {
		logger.Info("REDIS_URL not set; using in-memory page cache")
		return NewMemoryStore(), nil
	}

	store, err := Dial(opts, logger)
	if errors.Is(err, ErrRedisUnavailable) {
		logger.Warn("Redis unavailable; using in-memory page cache", zap.Error(err))
		return NewMemoryStore(), nil
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Dial connects to the redis named by opts.RedisURL and fails with
// ErrRedisUnavailable when it does not answer a ping.
func Dial(opts Options, logger *zap.Logger) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if opts.RedisPassword != "" {
		redisOpts.Password = opts.RedisPassword
	}
	redisOpts.DialTimeout = 5 * time.Second
	redisOpts.ReadTimeout = 3 * time.Second
	redisOpts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w at %s: %v", ErrRedisUnavailable, redisOpts.Addr, err)
	}

	logger.Info("Connected to Redis page cache", zap.String("addr", redisOpts.Addr))
	return NewRedisStore(client, logger), nil
}
