package authcore

import (
	"context"
	"log/slog"
	"time"

	internalaudit "github.com/nuworks/authcore/internal/audit"
	"github.com/nuworks/authcore/internal/flows"
	"github.com/nuworks/authcore/internal/limiters"
	"github.com/nuworks/authcore/internal/logging"
	"github.com/nuworks/authcore/internal/stores"
	"github.com/nuworks/authcore/jwt"
	"github.com/nuworks/authcore/session"
)

// Engine runs login, token issuance, verification and revocation. Build it
// with Builder; all methods are safe for concurrent use.
type Engine struct {
	config       Config
	logger       *slog.Logger
	credentials  CredentialStore
	comparer     PasswordComparer
	jwtManager   *jwt.Manager
	sessionStore *session.Store
	blacklist    *stores.Blacklist
	lockout      *limiters.LockoutLimiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	strategies   map[TokenKind]flows.VerificationStrategy
	flows        flows.Service
	now          func() time.Time
}

// Close flushes pending audit events and stops the dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns how many audit events were discarded on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Authenticate resolves the user by email, enforces the login method and the
// block flag, checks the password when one is supplied, and issues a token
// pair. A wrong password returns an *AttemptError or, once the failure
// threshold is reached, ErrAccountBlocked.
func (e *Engine) Authenticate(ctx context.Context, creds Credentials, ip, userAgent string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.Authenticate(ctx, flows.AuthenticateRequest{
		Email:     creds.Email,
		AuthType:  string(creds.AuthType),
		Password:  creds.Password,
		IP:        clientIPFromContext(ctx, ip),
		UserAgent: userAgentFromContext(ctx, userAgent),
	})
	if err != nil {
		return nil, e.fail(ctx, "authenticate", err)
	}

	return &LoginResult{
		User: User{
			ID:             res.User.UserID,
			Email:          res.User.Email,
			AuthProviderID: ProviderID(res.User.AuthProviderID),
		},
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, nil
}

// RecordFailure counts one failed password attempt for userID. It never
// returns nil: below the threshold the error is an *AttemptError; at the
// threshold the user is blocked in the credential store and
// ErrAccountBlocked is returned.
func (e *Engine) RecordFailure(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return e.flows.RecordFailure(ctx, userID)
}

// ResetFailures clears the failed-attempt counter for userID.
func (e *Engine) ResetFailures(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	if err := e.lockout.Reset(ctx, userID); err != nil {
		return e.fail(ctx, "reset_failures", infrastructureError("reset_failures", err))
	}
	return nil
}

// FailureCount returns the current failed-attempt count for userID.
func (e *Engine) FailureCount(ctx context.Context, userID string) (int, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	n, err := e.lockout.GetFailureCount(ctx, userID)
	if err != nil {
		return 0, e.fail(ctx, "failure_count", infrastructureError("failure_count", err))
	}
	return n, nil
}

// Issue signs a token pair for userID and makes the refresh token the only
// valid one for that user. No tokens are returned if the session write fails.
func (e *Engine) Issue(ctx context.Context, userID, ip, userAgent string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	pair, err := e.flows.Issue(ctx, userID, clientIPFromContext(ctx, ip), userAgentFromContext(ctx, userAgent))
	if err != nil {
		return TokenPair{}, e.fail(ctx, "issue", err)
	}
	return TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Verify checks token with the strategy selected by kind. Access tokens are
// verified against secret without touching the ledger. Refresh tokens are
// compared with the session recorded for userIDHint, and secret is unused.
//
// Errors: ErrTokenExpired, ErrTokenInvalid, ErrSessionNotFound,
// ErrInfrastructure. Errors that are not token-validation failures are
// returned unchanged.
func (e *Engine) Verify(ctx context.Context, token string, secret []byte, kind TokenKind, userIDHint string) (*VerifyResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	res := flows.RunVerify(ctx, e.strategies[kind], token, secret, userIDHint)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))

	success, failure := MetricAccessVerifySuccess, MetricAccessVerifyFailure
	if kind == TokenRefresh {
		success, failure = MetricRefreshVerifySuccess, MetricRefreshVerifyFailure
	}

	if err := e.verifyError(res); err != nil {
		e.metrics.Inc(failure)
		if KindOf(err) != KindInfrastructure {
			e.logger.ErrorContext(ctx, "token verification failed",
				"kind", kind.String(),
				"reason", KindOf(err).String(),
				"error", err.Error(),
			)
		}
		return nil, e.fail(ctx, "verify", err)
	}

	e.metrics.Inc(success)
	return &VerifyResult{UserID: res.UserID, ExpiresAt: res.ExpiresAt}, nil
}

// VerifyAccess verifies an access token with the configured access secret.
func (e *Engine) VerifyAccess(ctx context.Context, token string) (*VerifyResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.Verify(ctx, token, e.jwtManager.AccessSecret(), TokenAccess, "")
}

// VerifyRefresh checks that token is the refresh token on record for userID.
func (e *Engine) VerifyRefresh(ctx context.Context, token, userID string) (*VerifyResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.Verify(ctx, token, e.jwtManager.RefreshSecret(), TokenRefresh, userID)
}

// Refresh verifies refreshToken for userID and, on success, issues a new
// pair. The new refresh token replaces the old one.
func (e *Engine) Refresh(ctx context.Context, userID, refreshToken, ip, userAgent string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	res := e.flows.Refresh(ctx, userID, refreshToken, clientIPFromContext(ctx, ip), userAgentFromContext(ctx, userAgent))
	if err := e.verifyError(res.Verify); err != nil {
		e.metrics.Inc(MetricRefreshVerifyFailure)
		return TokenPair{}, e.fail(ctx, "refresh", err)
	}
	e.metrics.Inc(MetricRefreshVerifySuccess)
	if res.Err != nil {
		return TokenPair{}, e.fail(ctx, "refresh", res.Err)
	}
	return TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: res.Tokens.RefreshToken}, nil
}

// Revoke blacklists accessToken for userID until the access lifetime
// elapses. Only the most recently revoked token per user is remembered.
func (e *Engine) Revoke(ctx context.Context, userID, accessToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.flows.Revoke(ctx, userID, accessToken); err != nil {
		return e.fail(ctx, "revoke", err)
	}
	return nil
}

// IsRevoked reports whether token is the one currently blacklisted for
// userID.
func (e *Engine) IsRevoked(ctx context.Context, userID, token string) (bool, error) {
	if !e.ready() {
		return false, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	revoked, err := e.blacklist.IsRevoked(ctx, userID, token)
	if err != nil {
		return false, e.fail(ctx, "is_revoked", infrastructureError("is_revoked", err))
	}
	if revoked {
		e.metrics.Inc(MetricRevokedTokenHit)
	}
	return revoked, nil
}

// Logout revokes accessToken and deletes the user's session, so the
// outstanding refresh token stops verifying immediately.
func (e *Engine) Logout(ctx context.Context, userID, accessToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.flows.Logout(ctx, userID, accessToken); err != nil {
		return e.fail(ctx, "logout", err)
	}
	return nil
}

func (e *Engine) verifyError(res flows.VerifyResult) error {
	switch res.Failure {
	case flows.VerifyFailureNone:
		return nil
	case flows.VerifyFailureExpired:
		return ErrTokenExpired
	case flows.VerifyFailureSessionNotFound:
		return ErrSessionNotFound
	case flows.VerifyFailureInfrastructure:
		e.metrics.Inc(MetricInfrastructureFailure)
		return infrastructureError("get_session", res.Err)
	case flows.VerifyFailureOther:
		return res.Err
	default:
		return ErrTokenInvalid
	}
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// opContext bounds one ledger or credential-store call by OperationTimeout.
func (e *Engine) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.config.OperationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.config.OperationTimeout)
}

// fail logs infrastructure errors and returns err unchanged.
func (e *Engine) fail(ctx context.Context, operation string, err error) error {
	if KindOf(err) == KindInfrastructure {
		logging.LogError(ctx, e.logger, "authcore operation failed", err, "operation", operation)
	}
	return err
}
