package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptRepository counts failed logins per key inside a fixed window.
type LoginAttemptRepository interface {
	// Increment records a failure and returns the count for the current window.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// attemptClient is the subset of the Redis client the counter needs.
type attemptClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// incrementAttempts bumps the counter and gives it the window TTL in the same
// atomic step. A key found without a TTL gets one, so a counter can never
// outlive its window.
var incrementAttempts = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

type loginAttemptRepository struct {
	client attemptClient
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

// attemptKey hashes the login name so usernames never appear in Redis.
func attemptKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "querydesk:login:attempts:" + hex.EncodeToString(sum[:])
}

func (r *loginAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := incrementAttempts.Run(ctx, r.client, []string{attemptKey(key)}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *loginAttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Get(ctx, attemptKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (r *loginAttemptRepository) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, attemptKey(key)).Err()
}
