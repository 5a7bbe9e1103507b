package internaldefs

import (
	"github.com/nuworks/authcore"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful logins."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Rejected logins of any cause."},
	{ID: authcore.MetricAccountBlocked, Name: "authcore_account_blocked_total", Help: "Accounts blocked by the lockout policy."},
	{ID: authcore.MetricTokensIssued, Name: "authcore_tokens_issued_total", Help: "Issued token pairs."},
	{ID: authcore.MetricAccessVerifySuccess, Name: "authcore_access_verify_success_total", Help: "Accepted access tokens."},
	{ID: authcore.MetricAccessVerifyFailure, Name: "authcore_access_verify_failure_total", Help: "Rejected access tokens."},
	{ID: authcore.MetricRefreshVerifySuccess, Name: "authcore_refresh_verify_success_total", Help: "Accepted refresh tokens."},
	{ID: authcore.MetricRefreshVerifyFailure, Name: "authcore_refresh_verify_failure_total", Help: "Rejected refresh tokens."},
	{ID: authcore.MetricTokenRevoked, Name: "authcore_token_revoked_total", Help: "Blacklisted access tokens."},
	{ID: authcore.MetricRevokedTokenHit, Name: "authcore_revoked_token_hit_total", Help: "Revocation checks that matched a blacklisted token."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logouts."},
	{ID: authcore.MetricInfrastructureFailure, Name: "authcore_infrastructure_failure_total", Help: "Ledger or credential store failures."},
}

// HistogramDefs lists every engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricVerifyLatency, Name: "authcore_verify_latency_seconds", Help: "Token verification latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "authcore_audit_dropped_total"

// AuditDroppedHelp documents AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// BucketCount is the number of latency buckets including +Inf.
const BucketCount = len(authcore.HistogramBounds) + 1

// UpperBoundsSeconds returns the finite bucket bounds in seconds.
func UpperBoundsSeconds() []float64 {
	out := make([]float64, 0, len(authcore.HistogramBounds))
	for _, b := range authcore.HistogramBounds {
		out = append(out, b.Seconds())
	}
	return out
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
