package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore implements Store on a Redis client. Keys are namespaced under
// "gemchat:" so a shared Redis instance stays tidy.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) redisKey(key string) string {
	return "gemchat:" + key
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		// Refresh TTL on read
		_ = s.client.Expire(ctx, s.redisKey(key), s.ttl).Err()
	}
	return val, nil
}

// Set implements Store.
func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.redisKey(key), value, s.ttl).Err()
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
