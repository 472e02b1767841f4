package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"datacatalog/internal/domain/product"
	"datacatalog/pkg/logger"
)

var _ product.TagCache = (*TagCache)(nil)

// DefaultTagKey is the redis key holding the serialized tag list. The
// generation counter lives next to it under DefaultTagKey + ":gen".
const DefaultTagKey = "datacatalog:tags"

// setIfCurrent writes the list only while the generation is unchanged.
// KEYS: list, generation. ARGV: expected generation, payload, ttl in ms.
var setIfCurrent = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// TagCache stores the tag list in redis. Redis failures are logged and
// treated as misses so the catalog keeps serving from PostgreSQL.
type TagCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

// NewTagCacheFromURL connects to redis and verifies the connection.
func NewTagCacheFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*TagCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "redis tag cache connected", "addr", opts.Addr)
	return NewTagCacheFromClient(client, ttl), nil
}

// NewTagCacheFromClient wraps an existing client.
func NewTagCacheFromClient(client *redis.Client, ttl time.Duration) *TagCache {
	return &TagCache{client: client, key: DefaultTagKey, genKey: DefaultTagKey + ":gen", ttl: ttl}
}

// Get returns the cached list, or the current generation on a miss. A
// negative generation means redis could not be read; Set ignores it.
func (c *TagCache) Get(ctx context.Context) ([]product.Tag, int64, bool) {
	vals, err := c.client.MGet(ctx, c.key, c.genKey).Result()
	if err != nil {
		logger.Warn(ctx, "tag cache read failed", "error", err)
		return nil, -1, false
	}

	var gen int64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			logger.Warn(ctx, "tag cache generation is corrupt", "error", err)
			return nil, -1, false
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var tags []product.Tag
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		logger.Warn(ctx, "tag cache entry is corrupt", "error", err)
		return nil, gen, false
	}
	return tags, gen, true
}

// Set stores the list if gen is still the current generation.
func (c *TagCache) Set(ctx context.Context, gen int64, tags []product.Tag) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		logger.Warn(ctx, "tag cache encode failed", "error", err)
		return
	}
	err = setIfCurrent.Run(ctx, c.client, []string{c.key, c.genKey},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Err()
	if err != nil {
		logger.Warn(ctx, "tag cache write failed", "error", err)
	}
}

// Invalidate drops the list and starts a new generation.
func (c *TagCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "tag cache invalidation failed", "error", err)
	}
}

// Ping reports whether redis is reachable.
func (c *TagCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (c *TagCache) Close() error {
	return c.client.Close()
}
