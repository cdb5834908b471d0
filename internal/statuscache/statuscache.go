// FilePath: internal/statuscache/statuscache.go
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const defaultTTL = 5 * time.Second

// Cache keeps recently fetched live device status in Redis so a dashboard
// polling several widgets does not hammer the hardware. A nil *Cache is valid
// and disables caching; the cache is never the source of truth.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis. An empty host disables the cache and returns nil.
func New(cfg config.RedisConfig) *Cache {
	if cfg.Host == "" {
		nuts.L.Infof("[StatusCache] Redis not configured, live-status caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	nuts.L.Infof("[StatusCache] Connected to Redis at %s:%d", cfg.Host, cfg.Port)
	return &Cache{rdb: rdb, ttl: ttl}
}

func statusKey(feederID int64) string {
	return fmt.Sprintf("feederhub:status:%d", feederID)
}

// Get returns the cached status for a feeder, or nil on miss.
func (c *Cache) Get(ctx context.Context, feederID int64) *models.DeviceStatus {
	if c == nil {
		return nil
	}

	raw, err := c.rdb.Get(ctx, statusKey(feederID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			nuts.L.Warnf("[StatusCache] Redis get failed for feeder %d: %v", feederID, err)
		}
		return nil
	}

	status := &models.DeviceStatus{}
	if err := json.Unmarshal(raw, status); err != nil {
		nuts.L.Warnf("[StatusCache] Dropping corrupt cached status for feeder %d: %v", feederID, err)
		return nil
	}
	return status
}

// Set stores a status snapshot with the cache TTL. Failures are logged only.
func (c *Cache) Set(ctx context.Context, feederID int64, status *models.DeviceStatus) {
	if c == nil || status == nil {
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statusKey(feederID), raw, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[StatusCache] Redis set failed for feeder %d: %v", feederID, err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
