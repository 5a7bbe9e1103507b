package flows

import "context"

// LockoutMetrics carries metric IDs used by the lockout flow.
type LockoutMetrics struct {
	AccountBlocked int
}

// LockoutEvents carries audit event names used by the lockout flow.
type LockoutEvents struct {
	AccountBlocked string
}

// LockoutErrors carries host-level sentinel errors used by the lockout flow.
type LockoutErrors struct {
	EngineNotReady error
	UserNotFound   error
	AccountBlocked error
}

// RecordFailureDeps captures the failed-attempt policy dependencies.
type RecordFailureDeps struct {
	Threshold int
	// Record counts one failure and reports whether the threshold had
	// already been reached.
	Record    func(context.Context, string) (count int, exceeded bool, err error)
	BlockUser func(context.Context, string) error

	AttemptError   func(count, threshold int) error
	Infrastructure func(operation string, err error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics LockoutMetrics
	Events  LockoutEvents
	Errors  LockoutErrors
}

// RunRecordFailure applies the lockout policy to one failed attempt. It never
// returns nil: the caller always gets either an attempt error carrying the
// running count, the account-blocked error, or an infrastructure error.
func RunRecordFailure(ctx context.Context, userID string, deps RecordFailureDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Record == nil || deps.BlockUser == nil || deps.AttemptError == nil || deps.Infrastructure == nil {
		return deps.Errors.EngineNotReady
	}
	if userID == "" {
		return deps.Errors.UserNotFound
	}

	count, exceeded, err := deps.Record(ctx, userID)
	if err != nil {
		return deps.Infrastructure("record_failure", err)
	}
	if !exceeded {
		return deps.AttemptError(count, deps.Threshold)
	}

	if err := deps.BlockUser(ctx, userID); err != nil {
		return deps.Infrastructure("block_user", err)
	}

	deps.MetricInc(deps.Metrics.AccountBlocked)
	deps.EmitAudit(ctx, deps.Events.AccountBlocked, true, userID, deps.Errors.AccountBlocked, func() map[string]string {
		return map[string]string{
			"reason": "password_attempt_exceeded",
		}
	})
	return deps.Errors.AccountBlocked
}
