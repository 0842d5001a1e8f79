package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dedup:event:"

// RedisStore is a Store backed by Redis, for deployments that run
// more than one instance or need dedup state to survive restarts.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisStore creates a Redis-backed dedup store. A window of 0
// uses DefaultWindow.
func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisStore{
		client: client,
		window: window,
	}
}

func (s *RedisStore) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Mark(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+id, "1", s.window).Err(); err != nil {
		return fmt.Errorf("dedup: redis set: %w", err)
	}
	return nil
}
