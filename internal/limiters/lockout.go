package limiters

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LockoutConfig holds configuration for the failed-login lockout counter.
type LockoutConfig struct {
	// Threshold is the number of consecutive failures reported before the
	// next failure escalates to a block.
	Threshold int
	// Namespace is prepended verbatim to every key.
	Namespace string
}

var (
	// ErrLockoutUnavailable indicates the lockout backend is unreachable.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
)

// FailureOutcome is the result of recording one failed attempt.
type FailureOutcome struct {
	// Count is the counter value after this call. When Exceeded is true it is
	// the untouched value that triggered the escalation.
	Count int
	// Exceeded reports that the counter had already reached the threshold.
	Exceeded bool
}

const (
	recordStatusCounted  int64 = 1
	recordStatusExceeded int64 = 2
)

// The decision and the increment happen in one script so two concurrent
// failures can never both observe the same pre-increment value. Once the
// threshold is reached the counter is left as is; only the external block
// flag stops further logins.
const recordFailureScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "")
if not current then
  redis.call("SET", KEYS[1], 1)
  return {1, 1}
end
if current > tonumber(ARGV[1]) - 1 then
  return {2, current}
end
return {1, redis.call("INCR", KEYS[1])}
`

var recordFailureLua = redis.NewScript(recordFailureScript)

// LockoutLimiter tracks consecutive failed password attempts per user. The
// counter has no TTL: it lives until a successful login resets it.
type LockoutLimiter struct {
	redis  redis.UniversalClient
	config LockoutConfig
}

// NewLockoutLimiter creates a new lockout limiter.
func NewLockoutLimiter(redisClient redis.UniversalClient, cfg LockoutConfig) *LockoutLimiter {
	return &LockoutLimiter{redis: redisClient, config: cfg}
}

func (l *LockoutLimiter) key(userID string) string {
	return l.config.Namespace + "failedLoginAttempts:" + userID
}

// Threshold returns the configured failure threshold.
func (l *LockoutLimiter) Threshold() int {
	return l.config.Threshold
}

// RecordFailure counts one failed attempt for userID in a single atomic
// round trip.
//
//	Performance: 1 Lua EVALSHA.
func (l *LockoutLimiter) RecordFailure(ctx context.Context, userID string) (FailureOutcome, error) {
	if userID == "" {
		return FailureOutcome{}, errors.New("empty user id")
	}

	result, err := recordFailureLua.Run(ctx, l.redis, []string{l.key(userID)}, l.config.Threshold).Result()
	if err != nil {
		return FailureOutcome{}, fmt.Errorf("%w: %w", ErrLockoutUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) != 2 {
		return FailureOutcome{}, fmt.Errorf("%w: invalid lockout script response", ErrLockoutUnavailable)
	}
	status, ok := parts[0].(int64)
	if !ok {
		return FailureOutcome{}, fmt.Errorf("%w: invalid lockout script status", ErrLockoutUnavailable)
	}
	count, ok := parts[1].(int64)
	if !ok {
		return FailureOutcome{}, fmt.Errorf("%w: invalid lockout script count", ErrLockoutUnavailable)
	}

	switch status {
	case recordStatusCounted:
		return FailureOutcome{Count: int(count)}, nil
	case recordStatusExceeded:
		return FailureOutcome{Count: int(count), Exceeded: true}, nil
	default:
		return FailureOutcome{}, fmt.Errorf("%w: unknown lockout script status", ErrLockoutUnavailable)
	}
}

// Reset clears the failure counter for a user. Deleting a missing counter is
// a no-op.
func (l *LockoutLimiter) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	if err := l.redis.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrLockoutUnavailable, err)
	}
	return nil
}

// GetFailureCount returns the current failure count for a user.
func (l *LockoutLimiter) GetFailureCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, l.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrLockoutUnavailable, err)
	}
	return int(count), nil
}
