package authcore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the complete engine configuration. Build it with DefaultConfig,
// override what you need, and hand it to Builder.WithConfig. Field tags
// follow the layout read by the configfile package.
type Config struct {
	JWT              JWTConfig                 `koanf:"jwt"`
	Session          SessionConfig             `koanf:"session"`
	Lockout          LockoutConfig             `koanf:"lockout"`
	Audit            AuditConfig               `koanf:"audit"`
	Metrics          MetricsConfig             `koanf:"metrics"`
	AuthMethods      map[AuthType][]ProviderID `koanf:"auth_methods"`
	OperationTimeout time.Duration             `koanf:"operation_timeout"`
}

// JWTConfig controls token signing. Both secrets are required; access and
// refresh tokens are signed with different keys.
type JWTConfig struct {
	AccessSecret  string        `koanf:"access_secret"`
	RefreshSecret string        `koanf:"refresh_secret"`
	AccessTTL     time.Duration `koanf:"access_ttl"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl"`
	Issuer        string        `koanf:"issuer"`
	Audience      string        `koanf:"audience"`
	Leeway        time.Duration `koanf:"leeway"`
}

// SessionConfig controls the Redis key layout. A non-empty KeyPrefix is
// joined to every key with ":".
type SessionConfig struct {
	KeyPrefix string `koanf:"key_prefix"`
}

// LockoutConfig controls the failed-login policy.
type LockoutConfig struct {
	Threshold int `koanf:"threshold"`
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size"`
	DropIfFull bool `koanf:"drop_if_full"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `koanf:"enabled"`
	EnableLatencyHistograms bool `koanf:"enable_latency_histograms"`
}

const (
	defaultIssuer    = "nuworks"
	defaultAudience  = "nuworks-api"
	minSecretLength  = 16
	maxLockoutCutoff = 1000
)

// DefaultConfig returns a Config with every field set except the two JWT
// secrets, which callers must provide.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 14 * 24 * time.Hour,
			Issuer:     defaultIssuer,
			Audience:   defaultAudience,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		AuthMethods:      DefaultAuthMethods(),
		OperationTimeout: 3 * time.Second,
	}
}

// DefaultAuthMethods maps each login method to the provider ids it admits.
func DefaultAuthMethods() map[AuthType][]ProviderID {
	return map[AuthType][]ProviderID{
		AuthTypeEmail:  {ProviderEmail},
		AuthTypeGoogle: {ProviderGoogle},
		AuthTypeKakao:  {ProviderKakao},
		AuthTypeNaver:  {ProviderNaver},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.AuthMethods != nil {
		out.AuthMethods = make(map[AuthType][]ProviderID, len(cfg.AuthMethods))
		for method, ids := range cfg.AuthMethods {
			out.AuthMethods[method] = append([]ProviderID(nil), ids...)
		}
	}
	return out
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if len(c.JWT.AccessSecret) < minSecretLength {
		return fmt.Errorf("JWT AccessSecret must be at least %d bytes", minSecretLength)
	}
	if len(c.JWT.RefreshSecret) < minSecretLength {
		return fmt.Errorf("JWT RefreshSecret must be at least %d bytes", minSecretLength)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT AccessSecret and RefreshSecret must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	if strings.ContainsAny(c.Session.KeyPrefix, " \t\r\n") {
		return errors.New("Session KeyPrefix must not contain whitespace")
	}

	if c.Lockout.Threshold < 1 || c.Lockout.Threshold > maxLockoutCutoff {
		return fmt.Errorf("Lockout Threshold must be within [1, %d]", maxLockoutCutoff)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if len(c.AuthMethods) == 0 {
		return errors.New("AuthMethods must map at least one login method")
	}
	for method, ids := range c.AuthMethods {
		if method == "" {
			return errors.New("AuthMethods contains an empty login method")
		}
		if len(ids) == 0 {
			return fmt.Errorf("AuthMethods[%s] admits no provider", method)
		}
	}

	if c.OperationTimeout < 0 {
		return errors.New("OperationTimeout must be >= 0")
	}

	return nil
}

func (c *Config) keyNamespace() string {
	if c.Session.KeyPrefix == "" {
		return ""
	}
	return c.Session.KeyPrefix + ":"
}

// methodFor returns the login method that admits provider, used to tell a
// user which method they registered with.
func (c *Config) methodFor(provider ProviderID) AuthType {
	var found AuthType
	for method, ids := range c.AuthMethods {
		for _, id := range ids {
			if id == provider && (found == "" || method < found) {
				found = method
			}
		}
	}
	return found
}

func (c *Config) providerAllowed(method AuthType, provider ProviderID) bool {
	for _, id := range c.AuthMethods[method] {
		if id == provider {
			return true
		}
	}
	return false
}
