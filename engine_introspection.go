package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/nuworks/authcore/session"
)

// SessionInfo is the safe view of a session record. It never carries the
// refresh token.
type SessionInfo struct {
	UserID    string
	IP        string
	UserAgent string
}

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   time.Duration
}

// Ping checks the ledger and returns its round-trip latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	latency, err := e.sessionStore.Ping(ctx)
	if err != nil {
		return latency, e.fail(ctx, "ping", infrastructureError("ping", err))
	}
	return latency, nil
}

// Health reports ledger reachability without returning an error.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if !e.ready() {
		return HealthStatus{}
	}

	latency, err := e.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency,
	}
}

// GetSessionInfo returns the client details recorded for userID's session,
// or ErrSessionNotFound.
func (e *Engine) GetSessionInfo(ctx context.Context, userID string) (*SessionInfo, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	sess, err := e.sessionStore.Get(ctx, userID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, e.fail(ctx, "get_session", infrastructureError("get_session", err))
	}

	return &SessionInfo{
		UserID:    sess.UserID,
		IP:        sess.IP,
		UserAgent: sess.UserAgent,
	}, nil
}
