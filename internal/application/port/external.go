package port

import (
	"context"

	"github.com/plantdocs/formflow/internal/domain/event"
)

// AuditEmitter receives a record of every committed transition for
// independent, append-only audit logging. Emission happens after commit;
// failures are reported but never roll back the transition.
type AuditEmitter interface {
	RecordTransition(ctx context.Context, evt *event.TransitionEvent) error
}

// Notifier receives "submission entered state X" events to drive user-facing
// alerts. Recipients are derived by the notifier; delivery is best-effort.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, evt *event.TransitionEvent) error
}
