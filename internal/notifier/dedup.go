package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupKeyFormat  = "dedup:%s:%s"
	DefaultDedupTTL = 48 * time.Hour
)

// Deduper remembers which events were already handled. Kafka delivers at least
// once, so a redelivered event must not notify the guest twice.
type Deduper interface {
	// Claim reports whether eventID is seen for the first time and marks it.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Forget drops a claim so a failed event can be retried.
	Forget(ctx context.Context, eventID string) error
}

type RedisDeduper struct {
	client  *redis.Client
	service string
	ttl     time.Duration
}

func NewRedisDeduper(client *redis.Client, service string, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDeduper{client: client, service: service, ttl: ttl}
}

func (d *RedisDeduper) key(eventID string) string {
	return fmt.Sprintf(dedupKeyFormat, d.service, eventID)
}

func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(eventID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, d.key(eventID)).Err(); err != nil {
		return fmt.Errorf("forget event %s: %w", eventID, err)
	}
	return nil
}
