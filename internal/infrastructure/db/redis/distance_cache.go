package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const defaultDistanceTTL = 24 * time.Hour

// kv is the subset of *redis.Client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// DistanceCache memoizes distance lookups in Redis.
// Key format: distance:<origin>|<destination> (lower-cased)
//
// Cache failures never fail a lookup: the wrapped provider is called instead.
type DistanceCache struct {
	client kv
	next   ports.DistanceProvider
	ttl    time.Duration
	log    zerolog.Logger
}

// NewDistanceCache wraps next with a Redis-backed cache.
func NewDistanceCache(client kv, next ports.DistanceProvider, ttl time.Duration, log zerolog.Logger) *DistanceCache {
	if ttl <= 0 {
		ttl = defaultDistanceTTL
	}
	return &DistanceCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *DistanceCache) Distance(ctx context.Context, origin, destination string) (float64, error) {
	key := c.key(origin, destination)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if km, perr := strconv.ParseFloat(raw, 64); perr == nil {
			metrics.DistanceCacheTotal.WithLabelValues("hit").Inc()
			return km, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding unreadable cached distance")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Msg("distance cache read failed, calling provider")
	}
	metrics.DistanceCacheTotal.WithLabelValues("miss").Inc()

	km, err := c.next.Distance(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	if serr := c.client.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err(); serr != nil {
		c.log.Warn().Err(serr).Msg("failed to cache distance")
	}
	return km, nil
}

func (c *DistanceCache) key(origin, destination string) string {
	return fmt.Sprintf("distance:%s|%s",
		strings.ToLower(strings.TrimSpace(origin)),
		strings.ToLower(strings.TrimSpace(destination)))
}
