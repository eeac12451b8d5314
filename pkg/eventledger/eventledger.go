// Package eventledger remembers which payment gateway events were already
// processed, so webhook redeliveries can be acknowledged without touching
// the database.
package eventledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:event:"

// RedisLedger records processed event ids in Redis with a TTL.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger creates a ledger backed by the Redis server at addr.
func NewRedisLedger(addr string, ttl time.Duration) *RedisLedger {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisLedger{client: rdb, ttl: ttl}
}

// Ping checks connectivity.
func (l *RedisLedger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Seen reports whether eventID was marked before and has not expired.
func (l *RedisLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := l.client.Get(ctx, keyPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up event %s: %w", eventID, err)
	}
	return true, nil
}

// Mark records eventID as processed.
func (l *RedisLedger) Mark(ctx context.Context, eventID string) error {
	err := l.client.Set(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), l.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
