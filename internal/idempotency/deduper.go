// Package idempotency remembers which client request keys already produced
// a task so retried creates do not append duplicate cards.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// ErrUnknownKey is returned by Lookup when the key was never claimed or has expired
var ErrUnknownKey = errors.New("idempotency key not found")

// Store is the deduplication contract the HTTP layer depends on
type Store interface {
	Claim(ctx context.Context, userID int, key string) (bool, error)
	Remember(ctx context.Context, userID int, key string, taskID int) error
	Lookup(ctx context.Context, userID int, key string) (taskID int, inFlight bool, err error)
	Release(ctx context.Context, userID int, key string) error
}

// RedisDeduper stores idempotency keys in Redis so every instance sees the
// same claims.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisDeduper)(nil)

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(userID int, key string) string {
	return fmt.Sprintf("tandem:idem:%d:%s", userID, key)
}

// Claim marks the key as in flight. It returns true when this caller owns
// the key and should perform the operation.
func (r *RedisDeduper) Claim(ctx context.Context, userID int, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, key), pending, r.ttl).Result()
}

// Remember records the task a claimed key produced
func (r *RedisDeduper) Remember(ctx context.Context, userID int, key string, taskID int) error {
	return r.client.Set(ctx, r.key(userID, key), strconv.Itoa(taskID), r.ttl).Err()
}

// Lookup reports what a previously claimed key produced. inFlight is true
// while the owning request has not finished.
func (r *RedisDeduper) Lookup(ctx context.Context, userID int, key string) (int, bool, error) {
	val, err := r.client.Get(ctx, r.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, ErrUnknownKey
	}
	if err != nil {
		return 0, false, err
	}
	if val == pending {
		return 0, true, nil
	}

	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q: %w", val, err)
	}
	return id, false, nil
}

// Release deletes a claim. It is used when the operation fails so the
// caller may retry with the same key.
func (r *RedisDeduper) Release(ctx context.Context, userID int, key string) error {
	return r.client.Del(ctx, r.key(userID, key)).Err()
}
