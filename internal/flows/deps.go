package flows

import "context"

// Deps groups flow dependency sets. The root engine builds this once and
// delegates each operation to the matching flow.
type Deps struct {
	Authenticate  AuthenticateDeps
	RecordFailure RecordFailureDeps
	Issue         IssueDeps
	Revoke        RevokeDeps
	Logout        LogoutDeps
	Refresh       RefreshDeps
}

// Service is the flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Issue.CreateAccess != nil
}

func (s Service) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResult, error) {
	return RunAuthenticate(ctx, req, s.deps.Authenticate)
}

func (s Service) RecordFailure(ctx context.Context, userID string) error {
	return RunRecordFailure(ctx, userID, s.deps.RecordFailure)
}

func (s Service) Issue(ctx context.Context, userID, ip, userAgent string) (IssueResult, error) {
	return RunIssue(ctx, userID, ip, userAgent, s.deps.Issue)
}

func (s Service) Revoke(ctx context.Context, userID, accessToken string) error {
	return RunRevoke(ctx, userID, accessToken, s.deps.Revoke)
}

func (s Service) Logout(ctx context.Context, userID, accessToken string) error {
	return RunLogout(ctx, userID, accessToken, s.deps.Logout)
}

func (s Service) Refresh(ctx context.Context, userID, refreshToken, ip, userAgent string) RefreshResult {
	return RunRefresh(ctx, userID, refreshToken, ip, userAgent, s.deps.Refresh)
}
