package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shipscraper/pkg/utils"
)

// RedisStore caches fetched page bodies so a re-run does not refetch
// every detail and media page. Keys are hashed URLs with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func pageKey(url string) string {
	return fmt.Sprintf("page:%s", utils.HashURL(url))
}

// GetPage returns a cached body for the URL, reporting whether the key
// existed.
func (s *RedisStore) GetPage(ctx context.Context, url string) ([]byte, bool, error) {
	body, err := s.client.Get(ctx, pageKey(url)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// SetPage stores the body under the URL's key with the configured TTL.
func (s *RedisStore) SetPage(ctx context.Context, url string, body []byte) error {
	return s.client.Set(ctx, pageKey(url), body, s.ttl).Err()
}
