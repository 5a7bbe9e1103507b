package flows

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/nuworks/authcore/jwt"
	"github.com/nuworks/authcore/session"
)

// VerifyFailureKind classifies verification failures for root-level mapping.
type VerifyFailureKind int

const (
	VerifyFailureNone VerifyFailureKind = iota
	VerifyFailureExpired
	VerifyFailureInvalid
	VerifyFailureSessionNotFound
	VerifyFailureInfrastructure
	// VerifyFailureOther carries an error that did not come from token
	// validation. It is returned to the caller unmodified.
	VerifyFailureOther
)

// VerifyResult carries either the verified identity or failure metadata.
type VerifyResult struct {
	Failure   VerifyFailureKind
	Err       error
	UserID    string
	ExpiresAt time.Time
}

// VerificationStrategy checks one kind of token.
type VerificationStrategy interface {
	Verify(ctx context.Context, token string, secret []byte, userIDHint string) VerifyResult
}

// AccessVerification checks a signed access token against secret. It needs
// no ledger access.
type AccessVerification struct {
	Parse func(token string, key []byte) (*jwt.AccessClaims, error)
}

func (a AccessVerification) Verify(_ context.Context, token string, secret []byte, _ string) VerifyResult {
	if a.Parse == nil {
		return VerifyResult{Failure: VerifyFailureInvalid}
	}

	claims, err := a.Parse(token, secret)
	switch jwt.Classify(err) {
	case jwt.FailureNone:
	case jwt.FailureExpired:
		return VerifyResult{Failure: VerifyFailureExpired, Err: err}
	case jwt.FailureInvalid:
		return VerifyResult{Failure: VerifyFailureInvalid, Err: err}
	default:
		return VerifyResult{Failure: VerifyFailureOther, Err: err}
	}

	result := VerifyResult{UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result
}

// SessionLookupVerification accepts a refresh token only when it is
// byte-equal to the one recorded in the user's session. The token signature
// is not checked; the session record is the authority.
type SessionLookupVerification struct {
	GetSession func(ctx context.Context, userID string) (*session.Session, error)
}

func (s SessionLookupVerification) Verify(ctx context.Context, token string, _ []byte, userIDHint string) VerifyResult {
	if userIDHint == "" {
		return VerifyResult{Failure: VerifyFailureSessionNotFound, Err: session.ErrSessionNotFound}
	}
	if s.GetSession == nil {
		return VerifyResult{Failure: VerifyFailureInvalid}
	}

	sess, err := s.GetSession(ctx, userIDHint)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return VerifyResult{Failure: VerifyFailureSessionNotFound, Err: err}
		}
		return VerifyResult{Failure: VerifyFailureInfrastructure, Err: err}
	}
	if sess == nil {
		return VerifyResult{Failure: VerifyFailureSessionNotFound, Err: session.ErrSessionNotFound}
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(sess.RefreshToken)) != 1 {
		return VerifyResult{Failure: VerifyFailureInvalid}
	}

	userID := sess.UserID
	if userID == "" {
		userID = userIDHint
	}
	return VerifyResult{UserID: userID}
}

// RunVerify dispatches to strategy. A nil strategy stands for an
// unrecognised token kind and is reported as invalid.
func RunVerify(ctx context.Context, strategy VerificationStrategy, token string, secret []byte, userIDHint string) VerifyResult {
	if strategy == nil {
		return VerifyResult{Failure: VerifyFailureInvalid}
	}
	return strategy.Verify(ctx, token, secret, userIDHint)
}
