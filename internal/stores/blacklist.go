package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrBlacklistRedisUnavailable = errors.New("blacklist redis unavailable")
)

const (
	fieldAccessToken = "accessToken"
	fieldTime        = "time"
)

// BlacklistEntry is the revoked-token slot for one user.
type BlacklistEntry struct {
	AccessToken string
	RevokedAt   time.Time
}

type Blacklist struct {
	redis     redis.UniversalClient
	namespace string
}

func NewBlacklist(redisClient redis.UniversalClient, namespace string) *Blacklist {
	return &Blacklist{
		redis:     redisClient,
		namespace: namespace,
	}
}

func (b *Blacklist) key(userID string) string {
	return b.namespace + "blacklist:" + userID
}

// Revoke overwrites the user's slot with accessToken and revokedAt and sets
// the slot TTL.
//
//	Performance: 1 round trip (MULTI/EXEC with 3 commands).
func (b *Blacklist) Revoke(ctx context.Context, userID, accessToken string, revokedAt time.Time, ttl time.Duration) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	if ttl <= 0 {
		return errors.New("blacklist ttl must be positive")
	}

	key := b.key(userID)
	_, err := b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldAccessToken, accessToken,
			fieldTime, revokedAt.UTC().Format(time.RFC3339),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlacklistRedisUnavailable, err)
	}
	return nil
}

// Get returns the user's slot, or nil when nothing is revoked.
func (b *Blacklist) Get(ctx context.Context, userID string) (*BlacklistEntry, error) {
	fields, err := b.redis.HGetAll(ctx, b.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlacklistRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	entry := &BlacklistEntry{AccessToken: fields[fieldAccessToken]}
	if raw := fields[fieldTime]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			entry.RevokedAt = ts
		}
	}
	return entry, nil
}

// IsRevoked reports whether token is the one held in the user's slot.
//
//	Performance: 1 Redis HGET.
func (b *Blacklist) IsRevoked(ctx context.Context, userID, token string) (bool, error) {
	if userID == "" || token == "" {
		return false, nil
	}

	stored, err := b.redis.HGet(ctx, b.key(userID), fieldAccessToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrBlacklistRedisUnavailable, err)
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}
