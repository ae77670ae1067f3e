package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value at key into dest. A miss is (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// SetIndexed stores value at key and records key in the set at indexKey so
// that the whole group can be dropped with DeleteIndexed. The index lives at
// least as long as its newest member.
func (s *CacheService) SetIndexed(ctx context.Context, indexKey, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.SAdd(ctx, indexKey, key)
		pipe.Expire(ctx, indexKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store indexed cache value: %w", err)
	}
	return nil
}

var deleteIndexedScript = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
for _, key in ipairs(members) do
	redis.call('DEL', key)
end
redis.call('DEL', KEYS[1])
return #members
`)

// DeleteIndexed atomically removes every key recorded in indexKey together
// with the index itself and returns how many keys were indexed.
func (s *CacheService) DeleteIndexed(ctx context.Context, indexKey string) (int64, error) {
	n, err := deleteIndexedScript.Run(ctx, s.client, []string{indexKey}).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete indexed keys: %w", err)
	}
	return n, nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
