package flows

import "context"

// RefreshDeps captures refresh-rotation dependencies.
type RefreshDeps struct {
	Verify VerificationStrategy
	Secret []byte
	Issue  IssueDeps
}

// RefreshResult carries either the rotated pair or the verification
// failure that stopped it.
type RefreshResult struct {
	Verify VerifyResult
	Tokens IssueResult
	Err    error
}

// RunRefresh checks refreshToken against the user's session and, on a match,
// issues a new pair which replaces the session record.
func RunRefresh(ctx context.Context, userID, refreshToken, ip, userAgent string, deps RefreshDeps) RefreshResult {
	verified := RunVerify(ctx, deps.Verify, refreshToken, deps.Secret, userID)
	if verified.Failure != VerifyFailureNone {
		return RefreshResult{Verify: verified}
	}

	tokens, err := RunIssue(ctx, verified.UserID, ip, userAgent, deps.Issue)
	return RefreshResult{Verify: verified, Tokens: tokens, Err: err}
}
