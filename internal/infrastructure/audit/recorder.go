// Package audit persists an independent, append-only record of every
// committed workflow transition. Rows are only ever inserted; there is no
// update or delete path.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/domain/event"
	"github.com/plantdocs/formflow/pkg/database"
)

// Entry is one row of the audit trail
type Entry struct {
	ID           int64     `json:"id"`
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Action       string    `json:"action"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	ActorID      string    `json:"actor_id"`
	Department   string    `json:"department"`
	Comment      string    `json:"comment,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Recorder implements port.AuditEmitter on sqlite
type Recorder struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *database.DB, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger,
	}
}

// RecordTransition appends one audit entry for a committed transition.
// The event ID is unique, so redelivery of the same event is a no-op error
// rather than a duplicate row.
func (r *Recorder) RecordTransition(ctx context.Context, evt *event.TransitionEvent) error {
	query := `
		INSERT INTO audit_log (
			event_id, event_type, resource_type, resource_id, action,
			from_status, to_status, actor_id, department, comment, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		evt.ID,
		evt.Type.String(),
		evt.ResourceType,
		evt.SubmissionID,
		evt.Action.String(),
		evt.FromStatus.String(),
		evt.ToStatus.String(),
		evt.ActorID,
		evt.Department,
		evt.Comment,
		evt.OccurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("event_id", evt.ID),
			zap.String("submission_id", evt.SubmissionID),
			zap.Error(err))
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// ListByResource retrieves audit entries for one submission in append order
func (r *Recorder) ListByResource(ctx context.Context, resourceID string) ([]*Entry, error) {
	query := `
		SELECT id, event_id, event_type, resource_type, resource_id, action,
			from_status, to_status, actor_id, department, comment, occurred_at
		FROM audit_log
		WHERE resource_type = ? AND resource_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, event.ResourceTypeFormSubmission, resourceID)
	if err != nil {
		r.logger.Error("Failed to query audit log", zap.String("resource_id", resourceID), zap.Error(err))
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.EventType,
			&e.ResourceType,
			&e.ResourceID,
			&e.Action,
			&e.FromStatus,
			&e.ToStatus,
			&e.ActorID,
			&e.Department,
			&e.Comment,
			&e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.AuditEmitter = (*Recorder)(nil)
