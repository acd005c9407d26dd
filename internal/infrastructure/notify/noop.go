package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/domain/event"
)

// NoopNotifier logs status changes without delivering anything. Used when no
// messenger credentials are configured.
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// NotifyStatusChange logs the event and succeeds
func (n *NoopNotifier) NotifyStatusChange(ctx context.Context, evt *event.TransitionEvent) error {
	n.logger.Info("Status change (notifications disabled)",
		zap.String("submission_id", evt.SubmissionID),
		zap.String("from_status", evt.FromStatus.String()),
		zap.String("to_status", evt.ToStatus.String()),
	)
	return nil
}

// Verify interface compliance
var _ port.Notifier = (*NoopNotifier)(nil)
