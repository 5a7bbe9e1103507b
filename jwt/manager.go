package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names the algorithm used to sign and verify tokens.
//
// Only HS256 is accepted. Verification pins the parser to this single
// algorithm so tokens carrying "none" or any other alg are rejected.
type SigningMethod string

const (
	// MethodHS256 is the only supported signing method.
	MethodHS256 SigningMethod = "hs256"
)

// Failure classifies a token verification error.
type Failure int

const (
	// FailureNone means the error is nil.
	FailureNone Failure = iota
	// FailureExpired means the signature was valid but the token expired.
	FailureExpired
	// FailureInvalid covers every other verification failure: bad signature,
	// malformed structure, disallowed algorithm, issuer or audience mismatch.
	FailureInvalid
	// FailureOther means the error did not come from token verification.
	FailureOther
)

// Config defines how tokens are minted and checked.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

// Manager signs access and refresh tokens and verifies access tokens.
type Manager struct {
	config Config
	now    func() time.Time
}

// AccessClaims is the payload of an access token. The user id travels in
// the token so access checks need no ledger round trip.
type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It deliberately carries
// only a random identifier; the owning user is resolved from the session
// record.
type RefreshClaims struct {
	UUID string `json:"uuid"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}
	if cfg.SigningMethod != MethodHS256 {
		return nil, errors.New("unsupported signing method")
	}
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("hs256 requires an access secret")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("hs256 requires a refresh secret")
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// SetClock replaces the time source used for iat, exp and validation. It
// must be called before the Manager is shared.
func (j *Manager) SetClock(now func() time.Time) {
	if now != nil {
		j.now = now
	}
}

// AccessTTL returns the configured access-token lifetime.
func (j *Manager) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (j *Manager) RefreshTTL() time.Duration {
	return j.config.RefreshTTL
}

// AccessSecret returns the key access tokens are signed with.
func (j *Manager) AccessSecret() []byte {
	return j.config.AccessSecret
}

// RefreshSecret returns the key refresh tokens are signed with.
func (j *Manager) RefreshSecret() []byte {
	return j.config.RefreshSecret
}

// CreateAccess signs an access token for userID.
func (j *Manager) CreateAccess(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	claims := AccessClaims{
		UserID:           userID,
		RegisteredClaims: j.registered(j.now(), j.config.AccessTTL),
	}
	// jti keeps two tokens minted within the same second distinguishable,
	// which the single-slot blacklist relies on.
	claims.ID = uuid.NewString()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.config.AccessSecret)
}

// CreateRefresh signs a refresh token carrying a fresh random v4 UUID.
func (j *Manager) CreateRefresh() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	now := j.now()
	claims := RefreshClaims{
		UUID:             id.String(),
		RegisteredClaims: j.registered(now, j.config.RefreshTTL),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.config.RefreshSecret)
}

// ParseAccess verifies tokenStr with the configured access secret.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	return j.ParseAccessWithKey(tokenStr, j.config.AccessSecret)
}

// ParseAccessWithKey verifies tokenStr against key, pinning the algorithm to
// HS256 and enforcing issuer, audience and expiry.
func (j *Manager) ParseAccessWithKey(tokenStr string, key []byte) (*AccessClaims, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty verification key", jwt.ErrTokenUnverifiable)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}
	if j.config.Audience != "" {
		options = append(options, jwt.WithAudience(j.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: userId", jwt.ErrTokenRequiredClaimMissing)
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(j.now().Add(j.config.MaxFutureIAT)) {
		return nil, fmt.Errorf("%w: iat too far in the future", jwt.ErrTokenUsedBeforeIssued)
	}

	return claims, nil
}

// Classify maps an error returned by ParseAccess into a Failure.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return FailureExpired
	}
	for _, target := range verificationErrors {
		if errors.Is(err, target) {
			return FailureInvalid
		}
	}
	return FailureOther
}

var verificationErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrInvalidKey,
	jwt.ErrInvalidKeyType,
	jwt.ErrHashUnavailable,
}

func (j *Manager) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    j.config.Issuer,
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}
	return claims
}
