package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds each preference round trip.
const redisTimeout = 2 * time.Second

// RedisStore keeps one owner's preferences in Redis so several dashboards
// started by the same owner share the language choice.
type RedisStore struct {
	client *redis.Client
	prefix string
	owner  string
	ttl    time.Duration
}

// NewRedisStore creates a store under "<prefix>:<owner>:<key>". A zero ttl keeps values forever.
func NewRedisStore(client *redis.Client, prefix, owner string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, owner: owner, ttl: ttl}
}

// prefKey returns the Redis key for one preference.
func (s *RedisStore) prefKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.owner, key)
}

func (s *RedisStore) Load(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.prefKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load preference %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save preference %q: %w", key, err)
	}
	return nil
}
