package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
//
// The dispatch lock only guards against duplicate offer-creation work
// when order creation is retried; acceptance correctness never depends
// on it. The conditional row updates in the repositories are the only
// mechanism enforcing at-most-one assignment.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDispatchLock attempts to acquire the offer-creation lock for
// the given order. Returns true if the lock was acquired, false if
// already held.
func (s *LockStore) AcquireDispatchLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:dispatch:%s", orderID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseDispatchLock releases the offer-creation lock for the given order.
func (s *LockStore) ReleaseDispatchLock(ctx context.Context, orderID string) error {
	key := fmt.Sprintf("lock:dispatch:%s", orderID)

	return s.client.Del(ctx, key).Err()
}
