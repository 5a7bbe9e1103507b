package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any failure talking to the ledger.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned when no session record exists for the user.
var ErrSessionNotFound = errors.New("session not found")

const (
	fieldUserID       = "userId"
	fieldRefreshToken = "refreshToken"
	fieldIP           = "ip"
	fieldUserAgent    = "userAgent"
)

// Store is the Redis-backed session ledger. It keeps exactly one session
// record per user in a hash at "<namespace>session:<userID>"; saving a new
// session replaces the previous one wholesale.
type Store struct {
	redis     redis.UniversalClient
	namespace string
}

// NewStore creates a session [Store] backed by the given Redis client.
// namespace is prepended verbatim to every key and may be empty.
func NewStore(redis redis.UniversalClient, namespace string) *Store {
	return &Store{
		redis:     redis,
		namespace: namespace,
	}
}

func (s *Store) key(userID string) string {
	return s.namespace + "session:" + userID
}

// Save writes sess with the given TTL, replacing any prior session for the
// same user. DEL, HSET and EXPIRE run in one MULTI so a reader never sees a
// mix of old and new fields.
//
//	Performance: 1 round trip (MULTI/EXEC with 3 commands).
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.UserID == "" {
		return errors.New("session requires a user id")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}

	key := s.key(sess.UserID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUserID, sess.UserID,
			fieldRefreshToken, sess.RefreshToken,
			fieldIP, sess.IP,
			fieldUserAgent, sess.UserAgent,
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}

	return nil
}

// Get returns the session for userID or [ErrSessionNotFound].
//
//	Performance: 1 Redis HGETALL.
func (s *Store) Get(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrSessionNotFound
	}

	fields, err := s.redis.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	return &Session{
		UserID:       fields[fieldUserID],
		RefreshToken: fields[fieldRefreshToken],
		IP:           fields[fieldIP],
		UserAgent:    fields[fieldUserAgent],
	}, nil
}

// Delete removes the session for userID. Deleting a missing session is not
// an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
