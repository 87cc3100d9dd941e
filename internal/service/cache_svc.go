package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Producdevity/EmuReady-sub005/internal/metrics"
	"github.com/Producdevity/EmuReady-sub005/pkg/hash"
)

// DefaultScoreCacheTTL is how long aggregated score responses stay cached.
const DefaultScoreCacheTTL = 5 * time.Minute

// CacheService provides a Redis cache-aside layer for aggregated score responses.
// A nil client disables caching; every lookup then falls through to compute.
type CacheService struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string, ttl time.Duration, logger zerolog.Logger) *CacheService {
	logger = logger.With().Str("component", "cache").Logger()
	if ttl <= 0 {
		ttl = DefaultScoreCacheTTL
	}

	if redisURL == "" {
		logger.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{ttl: ttl, logger: logger}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{ttl: ttl, logger: logger}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{ttl: ttl, logger: logger}
	}

	logger.Info().Dur("ttl", ttl).Msg("redis: connected, caching enabled")
	return NewCacheServiceWithClient(rdb, ttl, logger)
}

// NewCacheServiceWithClient wraps an existing client. rdb may be nil.
func NewCacheServiceWithClient(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CacheService {
	if ttl <= 0 {
		ttl = DefaultScoreCacheTTL
	}
	return &CacheService{rdb: rdb, ttl: ttl, logger: logger}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// TTL is how long cached score responses live.
func (c *CacheService) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a cached payload. Returns nil if not cached or cache is disabled.
func (c *CacheService) Get(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// Set stores a JSON-encoded payload under key.
func (c *CacheService) Set(ctx context.Context, key string, data any) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// Invalidate removes cached payloads.
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetOrCompute decodes the cached value for key into a fresh T, or runs compute,
// caches its result and returns it. Concurrent misses for the same key share one
// compute call. Cache errors are logged and never returned; compute errors are.
func GetOrCompute[T any](ctx context.Context, c *CacheService, key string, compute func(context.Context) (T, error)) (T, error) {
	if cached, err := c.Get(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if cached != nil {
		var v T
		if err := json.Unmarshal(cached, &v); err == nil {
			metrics.CacheHits.Inc()
			return v, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}
	metrics.CacheMisses.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := compute(ctx)
		if err != nil {
			return res, err
		}
		if err := c.Set(ctx, key, res); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", v, key)
	}
	return out, nil
}

// ScoreCacheKey builds the key for an aggregate response, e.g. ScoreCacheKey("emulators", gameID, systemID).
func ScoreCacheKey(kind string, parts ...string) string {
	return hash.CacheKey("scores:"+kind, parts...)
}
