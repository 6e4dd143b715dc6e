// Package cache holds read-side snapshots of sessions in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

const (
	keyPrefix        = "occupancy:"
	generationPrefix = "occupancy-gen:"
)

// fillScript stores a snapshot only while the key's generation still matches
// the one read on the miss. A write committed in between bumps it.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Key returns the Redis key a session snapshot is stored under.
func Key(key domain.SessionKey) string {
	return keyPrefix + key.String()
}

// GenerationKey returns the counter bumped on every invalidation of key.
func GenerationKey(key domain.SessionKey) string {
	return generationPrefix + key.String()
}

type RedisOccupancyCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.OccupancyCache = (*RedisOccupancyCache)(nil)

func NewRedisOccupancyCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisOccupancyCache {
	return &RedisOccupancyCache{client: client, ttl: ttl, log: log}
}

// GetSession returns the cached snapshot. Misses and Redis failures both
// report false so callers fall back to the store. On a failure the
// generation is negative and a later FillSession does nothing.
func (c *RedisOccupancyCache) GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, int64, bool) {
	vals, err := c.client.MGet(ctx, Key(key), GenerationKey(key)).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("session", key.String()).Msg("occupancy cache read failed")
		return nil, -1, false
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		c.log.Warn().Err(err).Str("session", key.String()).Msg("unreadable occupancy cache generation")
		return nil, -1, false
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		c.log.Warn().Err(err).Str("session", key.String()).Msg("dropping corrupt occupancy cache entry")
		_ = c.client.Del(ctx, Key(key)).Err()
		return nil, generation, false
	}
	return &session, generation, true
}

// FillSession caches session unless its key was invalidated after generation
// was read.
func (c *RedisOccupancyCache) FillSession(ctx context.Context, session *domain.Session, generation int64) error {
	if generation < 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := session.Key()
	stored, err := fillScript.Run(ctx, c.client,
		[]string{Key(key), GenerationKey(key)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("cache session %s: %w", key, err)
	}
	if stored == 0 {
		c.log.Debug().Str("session", key.String()).Msg("skipped stale occupancy snapshot")
	}
	return nil
}

// Invalidate bumps the key's generation before dropping the snapshot, so a
// read that missed before the write cannot put the old state back.
func (c *RedisOccupancyCache) Invalidate(ctx context.Context, key domain.SessionKey) error {
	incrErr := c.client.Incr(ctx, GenerationKey(key)).Err()
	delErr := c.client.Del(ctx, Key(key)).Err()
	if err := errors.Join(incrErr, delErr); err != nil {
		return fmt.Errorf("invalidate session %s: %w", key, err)
	}
	return nil
}

func parseGeneration(v any) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(g, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
}
