package flows

import (
	"context"
	"time"
)

// RevokeMetrics carries metric IDs used by the revoke and logout flows.
type RevokeMetrics struct {
	TokenRevoked int
	Logout       int
}

// RevokeEvents carries audit event names used by the revoke and logout flows.
type RevokeEvents struct {
	TokenRevoked string
	Logout       string
}

// RevokeErrors carries host-level sentinel errors used by the revoke flow.
type RevokeErrors struct {
	EngineNotReady error
	UserNotFound   error
}

// RevokeDeps captures blacklist write dependencies.
type RevokeDeps struct {
	Now func() time.Time
	// Blacklist overwrites the user's revoked-token slot.
	Blacklist func(ctx context.Context, userID, token string, revokedAt time.Time) error

	Infrastructure func(operation string, err error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics RevokeMetrics
	Events  RevokeEvents
	Errors  RevokeErrors
}

// RunRevoke records accessToken as the user's revoked token.
func RunRevoke(ctx context.Context, userID, accessToken string, deps RevokeDeps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Blacklist == nil || deps.Infrastructure == nil {
		return deps.Errors.EngineNotReady
	}
	if userID == "" {
		return deps.Errors.UserNotFound
	}

	if err := deps.Blacklist(ctx, userID, accessToken, deps.Now()); err != nil {
		return deps.Infrastructure("revoke", err)
	}

	deps.MetricInc(deps.Metrics.TokenRevoked)
	deps.EmitAudit(ctx, deps.Events.TokenRevoked, true, userID, nil, nil)
	return nil
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Revoke        RevokeDeps
	DeleteSession func(context.Context, string) error
}

// RunLogout revokes accessToken and drops the user's session so any
// outstanding refresh token stops verifying.
func RunLogout(ctx context.Context, userID, accessToken string, deps LogoutDeps) error {
	if deps.DeleteSession == nil {
		return deps.Revoke.Errors.EngineNotReady
	}
	if err := RunRevoke(ctx, userID, accessToken, deps.Revoke); err != nil {
		return err
	}
	if err := deps.DeleteSession(ctx, userID); err != nil {
		return deps.Revoke.Infrastructure("delete_session", err)
	}

	if deps.Revoke.MetricInc != nil {
		deps.Revoke.MetricInc(deps.Revoke.Metrics.Logout)
	}
	if deps.Revoke.EmitAudit != nil {
		deps.Revoke.EmitAudit(ctx, deps.Revoke.Events.Logout, true, userID, nil, nil)
	}
	return nil
}
