package authcore

import (
	"context"

	internalaudit "github.com/nuworks/authcore/internal/audit"
)

// emitAudit records an event when auditing is enabled. Failures are stored
// as their ErrorKind name so raw backend messages never reach the sink.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
	}
	if err != nil {
		event.Error = KindOf(err).String()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
