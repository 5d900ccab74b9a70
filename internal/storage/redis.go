package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore tracks recently scraped ASINs so repeat requests within the
// dedup window skip the browser entirely. Persistence stays idempotent either
// way; this only saves page fetches.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkScraped sets a key with a TTL to prevent re-scraping.
func (s *RedisStore) MarkScraped(ctx context.Context, asin string, ttl time.Duration) error {
	key := fmt.Sprintf("scraped:%s", asin)
	return s.client.Set(ctx, key, "1", ttl).Err()
}

// IsRecentlyScraped checks whether an ASIN was scraped within the TTL.
func (s *RedisStore) IsRecentlyScraped(ctx context.Context, asin string) (bool, error) {
	key := fmt.Sprintf("scraped:%s", asin)
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}
