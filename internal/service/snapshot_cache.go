package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

// CachedCollector serves snapshots from Redis and refreshes them through the
// wrapped collector on a miss. Redis failures are logged and bypassed.
type CachedCollector struct {
	next    domain.CityDataCollector
	rdb     *redis.Client
	key     string
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCachedCollector wraps next with a snapshot cache keyed by city
func NewCachedCollector(next domain.CityDataCollector, rdb *redis.Client, city string, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *CachedCollector {
	return &CachedCollector{
		next:    next,
		rdb:     rdb,
		key:     SnapshotKey(city),
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// SnapshotKey is the Redis key holding the city's cached snapshot
func SnapshotKey(city string) string {
	return "calo:snapshot:" + strings.ToLower(city)
}

// Collect implements domain.CityDataCollector.
func (c *CachedCollector) Collect(ctx context.Context) (domain.RawCityData, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var snap domain.RawCityData
		if err := json.Unmarshal(data, &snap); err == nil {
			c.metrics.SnapshotCache.WithLabelValues("hit").Inc()
			return snap, nil
		}
		c.logger.Warn("discarding unreadable cached snapshot", "key", c.key)
		c.metrics.SnapshotCache.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		c.metrics.SnapshotCache.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("snapshot cache read failed", "key", c.key, "error", err)
		c.metrics.SnapshotCache.WithLabelValues("error").Inc()
	}

	snap, err := c.next.Collect(ctx)
	if err != nil {
		return domain.RawCityData{}, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("failed to encode snapshot", "error", err)
		return snap, nil
	}
	if err := c.rdb.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", "key", c.key, "error", err)
	}
	return snap, nil
}

var _ domain.CityDataCollector = (*CachedCollector)(nil)
