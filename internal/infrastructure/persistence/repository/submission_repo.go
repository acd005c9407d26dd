package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
	"github.com/plantdocs/formflow/pkg/database"
)

// SubmissionRepository implements port.SubmissionRepository on sqlite.
//
// Commit is a compare-and-swap on the version column: the UPDATE is
// conditional on the version the caller read, and the workflow step is
// inserted in the same transaction, so status and history can never diverge.
type SubmissionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new submission in its initial state
func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	query := `
		INSERT INTO form_submissions (
			id, template_id, department, status, submitted_by,
			version, field_data, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.TemplateID,
		submission.Department,
		submission.Status.String(),
		submission.SubmittedBy,
		submission.Version,
		submission.FieldData,
		submission.CreatedAt,
		submission.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.String("id", submission.ID), zap.Error(err))
		return fmt.Errorf("%w: create submission: %v", port.ErrRepositoryUnavailable, err)
	}

	return nil
}

// Load retrieves a submission and its ordered workflow history
func (r *SubmissionRepository) Load(ctx context.Context, id string) (*entity.Submission, error) {
	query := `
		SELECT id, template_id, department, status, submitted_by,
			version, field_data, created_at, updated_at
		FROM form_submissions
		WHERE id = ?
	`

	var sub entity.Submission
	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.TemplateID,
		&sub.Department,
		&status,
		&sub.SubmittedBy,
		&sub.Version,
		&sub.FieldData,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", port.ErrNotFound, id)
		}
		r.logger.Error("Failed to load submission", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: load submission: %v", port.ErrRepositoryUnavailable, err)
	}
	sub.Status = workflow.State(status)

	steps, err := r.loadSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Steps = steps

	return &sub, nil
}

// loadSteps retrieves all workflow steps for a submission in append order
func (r *SubmissionRepository) loadSteps(ctx context.Context, submissionID string) ([]*entity.WorkflowStep, error) {
	query := `
		SELECT id, submission_id, kind, outcome, action,
			from_status, to_status, actor_id, comment, occurred_at
		FROM workflow_steps
		WHERE submission_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to load workflow steps", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("%w: load steps: %v", port.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	var steps []*entity.WorkflowStep
	for rows.Next() {
		var step entity.WorkflowStep
		var kind, outcome, action, from, to string
		err := rows.Scan(
			&step.ID,
			&step.SubmissionID,
			&kind,
			&outcome,
			&action,
			&from,
			&to,
			&step.ActorID,
			&step.Comment,
			&step.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan step: %v", port.ErrRepositoryUnavailable, err)
		}
		step.Kind = workflow.StepKind(kind)
		step.Outcome = workflow.Outcome(outcome)
		step.Action = workflow.Action(action)
		step.FromStatus = workflow.State(from)
		step.ToStatus = workflow.State(to)
		steps = append(steps, &step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate steps: %v", port.ErrRepositoryUnavailable, err)
	}

	return steps, nil
}

// Commit applies one transition atomically, keyed on (id, expectedVersion)
func (r *SubmissionRepository) Commit(ctx context.Context, id string, expectedVersion int64, newStatus workflow.State, step *entity.WorkflowStep) error {
	// The step must imply the status being written; a mismatch means the
	// caller is trying to let status and history drift apart.
	if derived, ok := workflow.StatusFromStep(step.Kind, step.Outcome); !ok || derived != newStatus {
		return fmt.Errorf("step (%s, %s) does not produce status %s", step.Kind, step.Outcome, newStatus)
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE form_submissions
			SET status = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`, newStatus.String(), step.OccurredAt, id, expectedVersion)
		if err != nil {
			return fmt.Errorf("%w: update submission: %v", port.ErrRepositoryUnavailable, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: rows affected: %v", port.ErrRepositoryUnavailable, err)
		}
		if affected == 0 {
			// Either the row is gone or someone else won the version race
			var exists int
			err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM form_submissions WHERE id = ?", id).Scan(&exists)
			if err != nil {
				return fmt.Errorf("%w: check existence: %v", port.ErrRepositoryUnavailable, err)
			}
			if exists == 0 {
				return fmt.Errorf("%w: %s", port.ErrNotFound, id)
			}
			return fmt.Errorf("%w: submission %s expected version %d", port.ErrConcurrentModification, id, expectedVersion)
		}

		stepResult, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_steps (
				submission_id, kind, outcome, action,
				from_status, to_status, actor_id, comment, occurred_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id,
			step.Kind.String(),
			step.Outcome.String(),
			step.Action.String(),
			step.FromStatus.String(),
			step.ToStatus.String(),
			step.ActorID,
			step.Comment,
			step.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("%w: insert step: %v", port.ErrRepositoryUnavailable, err)
		}

		stepID, err := stepResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: step id: %v", port.ErrRepositoryUnavailable, err)
		}
		step.ID = stepID

		return nil
	})
	if err != nil {
		if !errors.Is(err, port.ErrConcurrentModification) && !errors.Is(err, port.ErrNotFound) {
			r.logger.Error("Failed to commit transition",
				zap.String("submission_id", id),
				zap.Int64("expected_version", expectedVersion),
				zap.Error(err))
		}
		return err
	}

	return nil
}

// List retrieves a page of submissions without their step history
func (r *SubmissionRepository) List(ctx context.Context, limit, offset int) ([]*entity.Submission, error) {
	query := `
		SELECT id, template_id, department, status, submitted_by,
			version, field_data, created_at, updated_at
		FROM form_submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, fmt.Errorf("%w: list submissions: %v", port.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	var subs []*entity.Submission
	for rows.Next() {
		var sub entity.Submission
		var status string
		err := rows.Scan(
			&sub.ID,
			&sub.TemplateID,
			&sub.Department,
			&status,
			&sub.SubmittedBy,
			&sub.Version,
			&sub.FieldData,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan submission: %v", port.ErrRepositoryUnavailable, err)
		}
		sub.Status = workflow.State(status)
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
