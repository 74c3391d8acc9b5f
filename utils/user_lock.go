package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUserBusy signals that another invocation currently holds the user's lock.
var ErrUserBusy = errors.New("user is being processed by another invocation")

const userLockTTL = 15 * time.Second

var (
	localLocks   = map[uint]*sync.Mutex{}
	localLocksMu sync.Mutex
)

// WithUserLock serializes same-user invocations: the scheduler's nightly run
// and the ad-hoc trigger after activity logging can race for one user.
// Prefers a redis SET NX lease for cross-instance exclusion; falls back to a
// process-local mutex when redis is unreachable (single-instance only).
func WithUserLock(ctx context.Context, userID uint, fn func() error) error {
	rc := GetRedis()
	if rc != nil {
		key := fmt.Sprintf("streakd:lock:user:%d", userID)
		acquired, err := rc.SetNX(ctx, key, "1", userLockTTL).Result()
		if err == nil {
			if !acquired {
				return ErrUserBusy
			}
			defer func() {
				delCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = rc.Del(delCtx, key).Err()
			}()
			return fn()
		}
		if Sugar != nil {
			Sugar.Warnf("user lock via redis failed, falling back to local mutex: %v", err)
		}
	}

	mu := localUserMutex(userID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func localUserMutex(userID uint) *sync.Mutex {
	localLocksMu.Lock()
	defer localLocksMu.Unlock()
	mu, ok := localLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		localLocks[userID] = mu
	}
	return mu
}
