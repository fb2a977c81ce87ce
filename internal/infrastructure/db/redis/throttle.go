package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockoutWindow = 15 * time.Minute

// LoginThrottle counts failed logins per email in a fixed window.
// Key format: login:fail:<email>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle. maxAttempts <= 0 disables it.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = defaultLockoutWindow
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether another attempt may be made for key.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	if t.maxAttempts <= 0 {
		return true, nil
	}
	n, err := t.client.Get(ctx, t.key(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.maxAttempts, nil
}

// Fail records a failed attempt. The window starts at the first failure.
// INCR and EXPIRE NX run in one transaction, so a counter never outlives
// its window.
func (t *LoginThrottle) Fail(ctx context.Context, key string) error {
	if t.maxAttempts <= 0 {
		return nil
	}
	k := t.key(key)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, t.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("throttle fail: %w", err)
	}
	return nil
}

// Reset clears the failure counter for key.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if t.maxAttempts <= 0 {
		return nil
	}
	return t.client.Del(ctx, t.key(key)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login:fail:" + email
}
