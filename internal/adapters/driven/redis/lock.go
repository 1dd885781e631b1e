package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

const lockPrefix = keyPrefix + "lock:"

// Lock implements DistributedLock using SET NX with a TTL.
// Each Lock has an owner ID so one instance cannot release another's lock.
type Lock struct {
	client  redis.Cmdable
	ownerID string
}

// NewLock creates a new Redis-backed distributed lock.
func NewLock(client redis.Cmdable) *Lock {
	return &Lock{
		client:  client,
		ownerID: newOwnerID(),
	}
}

// newOwnerID returns hostname:pid:uuid.
func newOwnerID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString())
}

// Acquire takes the lock if nobody holds it. The lock expires after ttl.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Deletes the key only while it still holds our owner ID.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Release drops the lock if this instance holds it.
// Safe to call when the lock is not held or has expired.
func (l *Lock) Release(ctx context.Context, name string) error {
	err := releaseScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Resets the TTL only while the key still holds our owner ID.
var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	end
	return 0
`)

// Extend pushes the expiry of a held lock to ttl from now.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("lock %s not held by this instance", name)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// OwnerID identifies this instance in lock values.
func (l *Lock) OwnerID() string {
	return l.ownerID
}
