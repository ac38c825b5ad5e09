package keys

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"aegis/internal/domain"
)

const (
	redisKeyPrefix  = "aegis:coi-key:"
	defaultCacheTTL = 15 * time.Minute
)

// RedisCache caches community keys in Redis in front of a slower source
// provider. Cache entries are base64 strings under redisKeyPrefix. A
// Redis outage degrades to the source instead of failing the lookup;
// only a missing source key fails.
type RedisCache struct {
	client *redis.Client
	source domain.CommunityKeyProvider
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, source domain.CommunityKeyProvider, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, source: source, ttl: ttl}, nil
}

func (c *RedisCache) GetCommunityKey(ctx context.Context, coiName string) ([]byte, error) {
	encoded, err := c.client.Get(ctx, redisKeyPrefix+coiName).Result()
	if err == nil {
		key, decodeErr := base64.StdEncoding.DecodeString(encoded)
		if decodeErr == nil && len(key) == communityKeySize {
			return key, nil
		}
		// A corrupt entry falls through to the source and gets rewritten.
	}

	if c.source == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommunityKeyUnavailable, coiName)
	}
	key, err := c.source.GetCommunityKey(ctx, coiName)
	if err != nil {
		return nil, err
	}
	// Best effort: a failed cache write must not fail the lookup.
	c.client.Set(ctx, redisKeyPrefix+coiName, base64.StdEncoding.EncodeToString(key), c.ttl)
	return key, nil
}

// Invalidate drops the cached key for a community, forcing the next
// lookup back to the source. Used after a registry rotation.
func (c *RedisCache) Invalidate(ctx context.Context, coiName string) error {
	return c.client.Del(ctx, redisKeyPrefix+coiName).Err()
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
