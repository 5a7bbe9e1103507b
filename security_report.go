package authcore

import "time"

// SecurityReport summarises the security-relevant configuration of a built
// engine. It carries no secrets.
type SecurityReport struct {
	SigningAlgorithm string
	Issuer           string
	Audience         string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Leeway           time.Duration
	LockoutThreshold int
	KeyPrefix        string
	AuthMethods      map[AuthType][]ProviderID
	AuditEnabled     bool
	MetricsEnabled   bool
	OperationTimeout time.Duration
}

// SecurityReport returns the effective security settings.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	methods := cloneConfig(e.config).AuthMethods

	return SecurityReport{
		SigningAlgorithm: "HS256",
		Issuer:           e.config.JWT.Issuer,
		Audience:         e.config.JWT.Audience,
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.JWT.RefreshTTL,
		Leeway:           e.config.JWT.Leeway,
		LockoutThreshold: e.config.Lockout.Threshold,
		KeyPrefix:        e.config.Session.KeyPrefix,
		AuthMethods:      methods,
		AuditEnabled:     e.config.Audit.Enabled,
		MetricsEnabled:   e.config.Metrics.Enabled,
		OperationTimeout: e.config.OperationTimeout,
	}
}
