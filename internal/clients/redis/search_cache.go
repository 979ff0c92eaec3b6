package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tierfolio/tierfolio-backend/internal/clients/discovery"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/envutil"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// SearchCache is a redis-backed read-through cache for discovery search
// results. Cache failures are soft: a miss is returned and the lookup falls
// through to the provider.
type SearchCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewSearchCache connects using REDIS_ADDR; returns an error when unset so
// the caller can run without a cache.
func NewSearchCache(log *logger.Logger) (*SearchCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := envutil.Seconds("DISCOVERY_CACHE_TTL_SECONDS", 10*time.Minute)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &SearchCache{
		log: log.With("client", "RedisSearchCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (c *SearchCache) Get(ctx context.Context, key string) ([]discovery.Candidate, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var out []discovery.Candidate
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Debug("cache entry corrupt, dropping", "key", key, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return out, true
}

func (c *SearchCache) Set(ctx context.Context, key string, candidates []discovery.Candidate) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Debug("cache set failed", "key", key, "error", err)
	}
}

func (c *SearchCache) Close() error { return c.rdb.Close() }
