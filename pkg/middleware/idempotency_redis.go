package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"staydesk/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyIdempotency = "idem:%s"

// RedisIdempotencyStore shares cached responses between replicas. Entries expire
// through Redis TTLs, so there is no cleanup goroutine.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	raw, err := s.rdb.Get(ctx, redisIdempotencyKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Idempotency lookup failed", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.log.Warn("Discarding corrupt idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		s.log.Error("Failed to encode idempotent response", "error", err)
		return
	}
	if err := s.rdb.Set(ctx, redisIdempotencyKey(key), raw, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotent response", "error", err)
	}
}

func (s *RedisIdempotencyStore) Stop() {}

func redisIdempotencyKey(key string) string {
	return fmt.Sprintf(keyIdempotency, key)
}
