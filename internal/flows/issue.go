package flows

import (
	"context"

	"github.com/nuworks/authcore/session"
)

// IssueResult is a freshly minted token pair.
type IssueResult struct {
	AccessToken  string
	RefreshToken string
}

// IssueMetrics carries metric IDs used by the issue flow.
type IssueMetrics struct {
	TokensIssued int
}

// IssueEvents carries audit event names used by the issue flow.
type IssueEvents struct {
	TokenIssued string
}

// IssueErrors carries host-level sentinel errors used by the issue flow.
type IssueErrors struct {
	EngineNotReady error
	UserNotFound   error
}

// IssueDeps captures token issuance dependencies.
type IssueDeps struct {
	CreateAccess  func(userID string) (string, error)
	CreateRefresh func() (string, error)
	// SaveSession replaces the user's session record. The TTL is bound by the
	// caller to the refresh lifetime.
	SaveSession func(context.Context, *session.Session) error

	Infrastructure func(operation string, err error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics IssueMetrics
	Events  IssueEvents
	Errors  IssueErrors
}

// RunIssue signs an access and a refresh token for userID and records the
// refresh token as the user's only session. Tokens are returned only after
// the session write succeeds.
func RunIssue(ctx context.Context, userID, ip, userAgent string, deps IssueDeps) (IssueResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.CreateAccess == nil || deps.CreateRefresh == nil || deps.SaveSession == nil || deps.Infrastructure == nil {
		return IssueResult{}, deps.Errors.EngineNotReady
	}
	if userID == "" {
		return IssueResult{}, deps.Errors.UserNotFound
	}

	access, err := deps.CreateAccess(userID)
	if err != nil {
		return IssueResult{}, deps.Infrastructure("sign_access", err)
	}
	refresh, err := deps.CreateRefresh()
	if err != nil {
		return IssueResult{}, deps.Infrastructure("sign_refresh", err)
	}

	sess := &session.Session{
		UserID:       userID,
		RefreshToken: refresh,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if err := deps.SaveSession(ctx, sess); err != nil {
		return IssueResult{}, deps.Infrastructure("save_session", err)
	}

	deps.MetricInc(deps.Metrics.TokensIssued)
	deps.EmitAudit(ctx, deps.Events.TokenIssued, true, userID, nil, func() map[string]string {
		return map[string]string{
			"ip":         ip,
			"user_agent": userAgent,
		}
	})

	return IssueResult{AccessToken: access, RefreshToken: refresh}, nil
}
