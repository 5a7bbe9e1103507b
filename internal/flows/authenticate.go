package flows

import "context"

// AuthenticateRequest is the flow-local login request.
type AuthenticateRequest struct {
	Email     string
	AuthType  string
	Password  *string
	IP        string
	UserAgent string
}

// AuthUserRecord is the flow-local view of a stored user.
type AuthUserRecord struct {
	UserID         string
	Email          string
	PasswordHash   string
	AuthProviderID int
	Blocked        bool
}

// AuthenticateResult is the flow-local login response. User never carries
// the password hash.
type AuthenticateResult struct {
	User         AuthUserRecord
	AccessToken  string
	RefreshToken string
}

// AuthenticateMetrics carries metric IDs used by the authenticate flow.
type AuthenticateMetrics struct {
	LoginSuccess int
	LoginFailure int
}

// AuthenticateEvents carries audit event names used by the authenticate flow.
type AuthenticateEvents struct {
	LoginSuccess string
	LoginFailure string
}

// AuthenticateErrors carries host-level sentinel errors used by the
// authenticate flow.
type AuthenticateErrors struct {
	EngineNotReady error
	UserNotFound   error
	AccountBlocked error
}

// AuthenticateDeps captures authenticate flow dependencies.
type AuthenticateDeps struct {
	// FindUser returns nil, nil when no user has the email.
	FindUser        func(context.Context, string) (*AuthUserRecord, error)
	ProviderAllowed func(authType string, providerID int) bool
	ComparePassword func(plain, hash string) (bool, error)
	RecordFailure   func(context.Context, string) error
	IssueTokens     func(ctx context.Context, userID, ip, userAgent string) (string, string, error)
	ResetFailures   func(context.Context, string) error

	AuthMethodError func(providerID int) error
	Infrastructure  func(operation string, err error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)
	Warn      func(string, ...any)

	Metrics AuthenticateMetrics
	Events  AuthenticateEvents
	Errors  AuthenticateErrors
}

// RunAuthenticate resolves the user, checks the login method and block flag,
// verifies the password when one is supplied, and issues a token pair.
func RunAuthenticate(ctx context.Context, req AuthenticateRequest, deps AuthenticateDeps) (*AuthenticateResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.FindUser == nil ||
		deps.ProviderAllowed == nil ||
		deps.ComparePassword == nil ||
		deps.RecordFailure == nil ||
		deps.IssueTokens == nil ||
		deps.ResetFailures == nil ||
		deps.AuthMethodError == nil ||
		deps.Infrastructure == nil {
		return nil, deps.Errors.EngineNotReady
	}

	fail := func(userID, reason string, err error) (*AuthenticateResult, error) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, userID, err, func() map[string]string {
			return map[string]string{
				"email":  req.Email,
				"reason": reason,
			}
		})
		return nil, err
	}

	user, err := deps.FindUser(ctx, req.Email)
	if err != nil {
		return fail("", "store_unavailable", deps.Infrastructure("find_user", err))
	}
	if user == nil {
		return fail("", "user_not_found", deps.Errors.UserNotFound)
	}

	if !deps.ProviderAllowed(req.AuthType, user.AuthProviderID) {
		return fail(user.UserID, "forbidden_auth_method", deps.AuthMethodError(user.AuthProviderID))
	}

	if user.Blocked {
		return fail(user.UserID, "account_blocked", deps.Errors.AccountBlocked)
	}

	if req.Password != nil && user.PasswordHash != "" {
		ok, err := deps.ComparePassword(*req.Password, user.PasswordHash)
		if err != nil {
			return fail(user.UserID, "password_compare", deps.Infrastructure("compare_password", err))
		}
		if !ok {
			return fail(user.UserID, "password_mismatch", deps.RecordFailure(ctx, user.UserID))
		}
	}

	access, refresh, err := deps.IssueTokens(ctx, user.UserID, req.IP, req.UserAgent)
	if err != nil {
		return fail(user.UserID, "issue_tokens", err)
	}

	if err := deps.ResetFailures(ctx, user.UserID); err != nil {
		deps.Warn("authcore: failed-login counter reset failed", "user_id", user.UserID, "error", err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.UserID, nil, func() map[string]string {
		return map[string]string{
			"email": req.Email,
			"ip":    req.IP,
		}
	})

	projected := *user
	projected.PasswordHash = ""
	return &AuthenticateResult{
		User:         projected,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
