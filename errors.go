package authcore

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

var (
	// ErrUserNotFound is returned when no user matches the supplied identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbiddenAuthMethod is returned when the requested login method does
	// not match the method the user registered with. The concrete error is an
	// *AuthMethodError naming the allowed method.
	ErrForbiddenAuthMethod = errors.New("forbidden auth method")
	// ErrInvalidCredentials is returned on a password mismatch. The concrete
	// error is an *AttemptError carrying the running failure count.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBlocked is returned when the account is blocked, either by the
	// credential store or by the lockout policy.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrSessionNotFound is returned when a refresh check finds no session for
	// the user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTokenInvalid is returned for tokens with a bad signature, malformed
	// structure, disallowed algorithm or a refresh value that does not match
	// the session.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInfrastructure wraps failures of the ledger or the credential store.
	ErrInfrastructure = errors.New("infrastructure failure")
	// ErrEngineNotReady is returned by an Engine that was not built by Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// AttemptError reports a failed password attempt together with the running
// failure count, e.g. "invalid credentials 2 / 5".
type AttemptError struct {
	Count     int
	Threshold int
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s %d / %d", ErrInvalidCredentials.Error(), e.Count, e.Threshold)
}

func (e *AttemptError) Unwrap() error {
	return ErrInvalidCredentials
}

// AuthMethodError reports the login method the user is registered with.
type AuthMethodError struct {
	Allowed AuthType
}

func (e *AuthMethodError) Error() string {
	if e.Allowed == "" {
		return ErrForbiddenAuthMethod.Error()
	}
	return "available login method: " + string(e.Allowed)
}

func (e *AuthMethodError) Unwrap() error {
	return ErrForbiddenAuthMethod
}

// ErrorKind is a coarse classification of engine errors for transport layers.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUserNotFound
	KindForbiddenAuthMethod
	KindInvalidCredentials
	KindAccountBlocked
	KindSessionNotFound
	KindTokenInvalid
	KindTokenExpired
	KindInfrastructure
	KindUnknown
)

var kindNames = map[ErrorKind]string{
	KindNone:                "none",
	KindUserNotFound:        "user_not_found",
	KindForbiddenAuthMethod: "forbidden_auth_method",
	KindInvalidCredentials:  "invalid_credentials",
	KindAccountBlocked:      "account_blocked",
	KindSessionNotFound:     "session_not_found",
	KindTokenInvalid:        "token_invalid",
	KindTokenExpired:        "token_expired",
	KindInfrastructure:      "infrastructure",
	KindUnknown:             "unknown",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf classifies err. Errors not produced by the engine map to KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInfrastructure):
		return KindInfrastructure
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrForbiddenAuthMethod):
		return KindForbiddenAuthMethod
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrAccountBlocked):
		return KindAccountBlocked
	case errors.Is(err, ErrSessionNotFound):
		return KindSessionNotFound
	case errors.Is(err, ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return KindTokenInvalid
	default:
		return KindUnknown
	}
}

const infrastructureCode = "AUTH_INFRASTRUCTURE"

// infrastructureError wraps cause so that errors.Is matches both
// ErrInfrastructure and cause, and attaches the failing operation.
func infrastructureError(operation string, cause error) error {
	if cause == nil {
		cause = errors.New("unknown failure")
	}
	return oops.
		In("authcore").
		Code(infrastructureCode).
		With("operation", operation).
		Wrap(fmt.Errorf("%w: %w", ErrInfrastructure, cause))
}
