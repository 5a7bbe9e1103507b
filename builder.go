package authcore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/nuworks/authcore/internal/audit"
	"github.com/nuworks/authcore/internal/flows"
	"github.com/nuworks/authcore/internal/limiters"
	"github.com/nuworks/authcore/internal/stores"
	"github.com/nuworks/authcore/jwt"
	"github.com/nuworks/authcore/password"
	"github.com/nuworks/authcore/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder can be built once.
type Builder struct {
	config      Config
	redis       redis.UniversalClient
	credentials CredentialStore
	comparer    PasswordComparer
	logger      *slog.Logger
	auditSink   AuditSink
	now         func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the session ledger, the blacklist and
// the lockout counters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialStore sets the user store. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.credentials = store
	return b
}

// WithPasswordComparer overrides the default argon2id/bcrypt comparer.
func (b *Builder) WithPasswordComparer(c PasswordComparer) *Builder {
	b.comparer = c
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets where audit events go when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the wall clock used for token timestamps and
// revocation times.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.credentials == nil {
		return nil, errors.New("credential store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.MethodHS256,
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}
	if b.now != nil {
		jm.SetClock(b.now)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	comparer := b.comparer
	if comparer == nil {
		comparer = password.NewComparer()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	namespace := cfg.keyNamespace()
	e := &Engine{
		config:       cfg,
		logger:       logger.With("component", "authcore"),
		credentials:  b.credentials,
		comparer:     comparer,
		jwtManager:   jm,
		sessionStore: session.NewStore(b.redis, namespace),
		blacklist:    stores.NewBlacklist(b.redis, namespace),
		lockout: limiters.NewLockoutLimiter(b.redis, limiters.LockoutConfig{
			Threshold: cfg.Lockout.Threshold,
			Namespace: namespace,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     now,
	}
	e.strategies = map[TokenKind]flows.VerificationStrategy{
		TokenAccess: flows.AccessVerification{Parse: jm.ParseAccessWithKey},
		TokenRefresh: flows.SessionLookupVerification{GetSession: func(ctx context.Context, userID string) (*session.Session, error) {
			ctx, cancel := e.opContext(ctx)
			defer cancel()
			return e.sessionStore.Get(ctx, userID)
		}},
	}
	e.flows = flows.New(e.flowDeps())

	b.built = true

	return e, nil
}

func (e *Engine) flowDeps() flows.Deps {
	metricInc := func(id int) { e.metrics.Inc(MetricID(id)) }
	infra := func(operation string, err error) error {
		e.metrics.Inc(MetricInfrastructureFailure)
		return infrastructureError(operation, err)
	}

	issue := flows.IssueDeps{
		CreateAccess:  e.jwtManager.CreateAccess,
		CreateRefresh: e.jwtManager.CreateRefresh,
		SaveSession: func(ctx context.Context, sess *session.Session) error {
			ctx, cancel := e.opContext(ctx)
			defer cancel()
			return e.sessionStore.Save(ctx, sess, e.jwtManager.RefreshTTL())
		},
		Infrastructure: infra,
		MetricInc:      metricInc,
		EmitAudit:      e.emitAudit,
		Metrics:        flows.IssueMetrics{TokensIssued: int(MetricTokensIssued)},
		Events:         flows.IssueEvents{TokenIssued: AuditTokenIssued},
		Errors:         flows.IssueErrors{EngineNotReady: ErrEngineNotReady, UserNotFound: ErrUserNotFound},
	}

	revoke := flows.RevokeDeps{
		Now: e.now,
		Blacklist: func(ctx context.Context, userID, token string, revokedAt time.Time) error {
			ctx, cancel := e.opContext(ctx)
			defer cancel()
			return e.blacklist.Revoke(ctx, userID, token, revokedAt, e.jwtManager.AccessTTL())
		},
		Infrastructure: infra,
		MetricInc:      metricInc,
		EmitAudit:      e.emitAudit,
		Metrics:        flows.RevokeMetrics{TokenRevoked: int(MetricTokenRevoked), Logout: int(MetricLogout)},
		Events:         flows.RevokeEvents{TokenRevoked: AuditTokenRevoked, Logout: AuditLogout},
		Errors:         flows.RevokeErrors{EngineNotReady: ErrEngineNotReady, UserNotFound: ErrUserNotFound},
	}

	return flows.Deps{
		Authenticate: flows.AuthenticateDeps{
			FindUser: e.findUser,
			ProviderAllowed: func(authType string, providerID int) bool {
				return e.config.providerAllowed(AuthType(authType), ProviderID(providerID))
			},
			ComparePassword: e.comparer.Compare,
			RecordFailure:   e.RecordFailure,
			IssueTokens: func(ctx context.Context, userID, ip, userAgent string) (string, string, error) {
				pair, err := e.flows.Issue(ctx, userID, ip, userAgent)
				return pair.AccessToken, pair.RefreshToken, err
			},
			ResetFailures: e.ResetFailures,
			AuthMethodError: func(providerID int) error {
				return &AuthMethodError{Allowed: e.config.methodFor(ProviderID(providerID))}
			},
			Infrastructure: infra,
			MetricInc:      metricInc,
			EmitAudit:      e.emitAudit,
			Warn:           e.logger.Warn,
			Metrics: flows.AuthenticateMetrics{
				LoginSuccess: int(MetricLoginSuccess),
				LoginFailure: int(MetricLoginFailure),
			},
			Events: flows.AuthenticateEvents{
				LoginSuccess: AuditLoginSuccess,
				LoginFailure: AuditLoginFailure,
			},
			Errors: flows.AuthenticateErrors{
				EngineNotReady: ErrEngineNotReady,
				UserNotFound:   ErrUserNotFound,
				AccountBlocked: ErrAccountBlocked,
			},
		},
		RecordFailure: flows.RecordFailureDeps{
			Threshold: e.lockout.Threshold(),
			Record: func(ctx context.Context, userID string) (int, bool, error) {
				ctx, cancel := e.opContext(ctx)
				defer cancel()
				out, err := e.lockout.RecordFailure(ctx, userID)
				return out.Count, out.Exceeded, err
			},
			BlockUser: func(ctx context.Context, userID string) error {
				ctx, cancel := e.opContext(ctx)
				defer cancel()
				return e.credentials.BlockUser(ctx, userID, BlockPasswordAttemptExceeded)
			},
			AttemptError: func(count, threshold int) error {
				return &AttemptError{Count: count, Threshold: threshold}
			},
			Infrastructure: infra,
			MetricInc:      metricInc,
			EmitAudit:      e.emitAudit,
			Metrics:        flows.LockoutMetrics{AccountBlocked: int(MetricAccountBlocked)},
			Events:         flows.LockoutEvents{AccountBlocked: AuditAccountBlocked},
			Errors: flows.LockoutErrors{
				EngineNotReady: ErrEngineNotReady,
				UserNotFound:   ErrUserNotFound,
				AccountBlocked: ErrAccountBlocked,
			},
		},
		Issue:  issue,
		Revoke: revoke,
		Logout: flows.LogoutDeps{
			Revoke: revoke,
			DeleteSession: func(ctx context.Context, userID string) error {
				ctx, cancel := e.opContext(ctx)
				defer cancel()
				return e.sessionStore.Delete(ctx, userID)
			},
		},
		Refresh: flows.RefreshDeps{
			Verify: e.strategies[TokenRefresh],
			Secret: e.jwtManager.RefreshSecret(),
			Issue:  issue,
		},
	}
}

func (e *Engine) findUser(ctx context.Context, email string) (*flows.AuthUserRecord, error) {
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	rec, err := e.credentials.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &flows.AuthUserRecord{
		UserID:         rec.ID,
		Email:          rec.Email,
		PasswordHash:   rec.PasswordHash,
		AuthProviderID: int(rec.AuthProviderID),
		Blocked:        rec.Blocked,
	}, nil
}
