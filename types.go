package authcore

import (
	"context"
	"time"

	internalaudit "github.com/nuworks/authcore/internal/audit"
)

// AuthType names a login method requested by a client ("email", "google", ...).
type AuthType string

const (
	AuthTypeEmail  AuthType = "email"
	AuthTypeGoogle AuthType = "google"
	AuthTypeKakao  AuthType = "kakao"
	AuthTypeNaver  AuthType = "naver"
)

// ProviderID is the numeric auth-provider id stored on a user record.
type ProviderID int

const (
	ProviderEmail  ProviderID = 1
	ProviderGoogle ProviderID = 2
	ProviderKakao  ProviderID = 3
	ProviderNaver  ProviderID = 4
)

// BlockReason is the reason code passed to [CredentialStore.BlockUser].
type BlockReason int

const (
	BlockActive                  BlockReason = 1
	BlockPasswordAttemptExceeded BlockReason = 2
	BlockReportedMultipleTimes   BlockReason = 3
)

// TokenKind selects the verification strategy used by [Engine.Verify].
type TokenKind int

const (
	// TokenAccess verifies a signed access token without touching the ledger.
	TokenAccess TokenKind = iota + 1
	// TokenRefresh verifies a refresh token by exact match against the
	// user's session record.
	TokenRefresh
)

func (k TokenKind) String() string {
	switch k {
	case TokenAccess:
		return "access"
	case TokenRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// UserRecord is a user as returned by the [CredentialStore]. An empty
// PasswordHash marks a social-only account.
type UserRecord struct {
	ID             string
	Email          string
	PasswordHash   string
	AuthProviderID ProviderID
	// Blocked reports an active block flag held by the store.
	Blocked bool
}

// User is the projection of a [UserRecord] returned to callers. It never
// carries the password hash.
type User struct {
	ID             string
	Email          string
	AuthProviderID ProviderID
}

// Credentials is a login request. A nil Password skips the password check,
// which is how social logins are admitted.
type Credentials struct {
	Email    string
	AuthType AuthType
	Password *string
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Authenticate].
type LoginResult struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// VerifyResult is returned by successful verification. ExpiresAt is zero for
// refresh verification.
type VerifyResult struct {
	UserID    string
	ExpiresAt time.Time
}

// CredentialStore is the persistent user storage the engine reads identities
// from. FindByEmail returns ErrUserNotFound (or nil, nil) when no user
// matches. Any other error is treated as an infrastructure failure.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	BlockUser(ctx context.Context, userID string, reason BlockReason) error
}

// PasswordComparer checks a plaintext password against a stored hash.
type PasswordComparer interface {
	Compare(plain, hash string) (bool, error)
}

// PasswordComparerFunc adapts a function to [PasswordComparer].
type PasswordComparerFunc func(plain, hash string) (bool, error)

func (f PasswordComparerFunc) Compare(plain, hash string) (bool, error) {
	return f(plain, hash)
}

// AuditEvent is one audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher.
type AuditSink = internalaudit.Sink

type (
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	SlogSink       = internalaudit.SlogSink
)

// Audit event names.
const (
	AuditLoginSuccess   = internalaudit.EventLoginSuccess
	AuditLoginFailure   = internalaudit.EventLoginFailure
	AuditAccountBlocked = internalaudit.EventAccountBlocked
	AuditTokenIssued    = internalaudit.EventTokenIssued
	AuditTokenRevoked   = internalaudit.EventTokenRevoked
	AuditLogout         = internalaudit.EventLogout
)

var (
	NewChannelSink    = internalaudit.NewChannelSink
	NewJSONWriterSink = internalaudit.NewJSONWriterSink
	NewSlogSink       = internalaudit.NewSlogSink
)
