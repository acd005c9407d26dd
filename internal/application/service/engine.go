package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/domain/authz"
	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/event"
	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowEngine is the only component allowed to mutate submission status.
// It validates a requested transition against the state graph, consults the
// authorization resolver, applies the transition through the repository's
// version-checked commit, and emits audit/notification events after commit.
type WorkflowEngine interface {
	CreateSubmission(ctx context.Context, templateID, department, submittedBy, fieldData string) (*entity.Submission, error)
	ApplyTransition(ctx context.Context, submissionID string, actor entity.Actor, action workflow.Action, comment string) (*entity.Submission, error)

	Submit(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error)
	StartVerification(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error)
	CompleteVerification(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error)
	Approve(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error)
	Reject(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error)

	CloneRejected(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error)
	GetSubmission(ctx context.Context, submissionID string) (*entity.Submission, error)
	ListSubmissions(ctx context.Context, limit, offset int) ([]*entity.Submission, error)
}

type workflowEngineImpl struct {
	repo     port.SubmissionRepository
	resolver *authz.Resolver
	audit    port.AuditEmitter
	notifier port.Notifier
	logger   Logger
}

// NewWorkflowEngine creates a new WorkflowEngine
func NewWorkflowEngine(
	repo port.SubmissionRepository,
	resolver *authz.Resolver,
	audit port.AuditEmitter,
	notifier port.Notifier,
	logger Logger,
) WorkflowEngine {
	return &workflowEngineImpl{
		repo:     repo,
		resolver: resolver,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateSubmission mints a new Draft owned by the submitting user.
// Department is fixed at creation and never changes afterwards.
func (e *workflowEngineImpl) CreateSubmission(ctx context.Context, templateID, department, submittedBy, fieldData string) (*entity.Submission, error) {
	if templateID == "" {
		return nil, fmt.Errorf("%w: template_id", ErrMissingField)
	}
	if department == "" {
		return nil, fmt.Errorf("%w: department", ErrMissingField)
	}
	if submittedBy == "" {
		return nil, fmt.Errorf("%w: submitted_by", ErrMissingField)
	}

	now := time.Now().UTC()
	submission := &entity.Submission{
		ID:          uuid.NewString(),
		TemplateID:  templateID,
		Department:  department,
		Status:      workflow.StateDraft,
		SubmittedBy: submittedBy,
		Version:     1,
		FieldData:   fieldData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.repo.Create(ctx, submission); err != nil {
		e.logger.Error("Failed to create submission", "error", err, "template_id", templateID)
		return nil, err
	}

	e.logger.Info("Submission created",
		"submission_id", submission.ID,
		"template_id", templateID,
		"department", department,
		"submitted_by", submittedBy,
	)
	return submission, nil
}

// ApplyTransition executes one workflow action against a submission.
//
// Order of checks: comment validation, load, transition-table validation,
// authorization, then the version-checked commit. A denied or invalid request
// changes nothing and appends no history entry.
func (e *workflowEngineImpl) ApplyTransition(ctx context.Context, submissionID string, actor entity.Actor, action workflow.Action, comment string) (*entity.Submission, error) {
	if action.RequiresComment() && strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}

	submission, err := e.repo.Load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	machine := workflow.BuildSubmissionMachine(submission.Status)
	transition, err := machine.Fire(ctx, action)
	if err != nil {
		return nil, err
	}

	if err := e.resolver.Authorize(actor, submission, action); err != nil {
		e.logger.Info("Transition denied",
			"submission_id", submissionID,
			"action", action.String(),
			"actor_id", actor.ID,
			"actor_role", actor.Role,
		)
		return nil, err
	}

	// The read may have been served stale; the commit below re-checks the
	// version against the authoritative row. Nothing is written once the
	// caller has given up.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	step := &entity.WorkflowStep{
		SubmissionID: submission.ID,
		Kind:         transition.Kind,
		Outcome:      transition.Outcome,
		Action:       action,
		FromStatus:   transition.From,
		ToStatus:     transition.To,
		ActorID:      actor.ID,
		Comment:      strings.TrimSpace(comment),
		OccurredAt:   now,
	}

	if err := e.repo.Commit(ctx, submission.ID, submission.Version, transition.To, step); err != nil {
		e.logger.Error("Failed to commit transition",
			"error", err,
			"submission_id", submissionID,
			"action", action.String(),
			"expected_version", submission.Version,
		)
		return nil, err
	}

	submission.Status = transition.To
	submission.Version++
	submission.UpdatedAt = now
	submission.Steps = append(submission.Steps, step)

	e.logger.Info("Transition committed",
		"submission_id", submission.ID,
		"action", action.String(),
		"from_status", transition.From.String(),
		"to_status", transition.To.String(),
		"actor_id", actor.ID,
		"version", submission.Version,
	)

	e.emitTransition(ctx, submission, actor, transition, step)
	return submission, nil
}

// emitTransition reports a committed transition to the audit emitter and the
// notifier. The transition already stands: emission failures are logged, not
// propagated, and caller cancellation no longer applies.
func (e *workflowEngineImpl) emitTransition(ctx context.Context, submission *entity.Submission, actor entity.Actor, transition workflow.Transition, step *entity.WorkflowStep) {
	evt := event.NewTransitionEvent(
		submission.ID,
		step.Action,
		transition.From,
		transition.To,
		actor.ID,
		submission.Department,
		step.Comment,
		step.OccurredAt,
	)

	emitCtx := context.WithoutCancel(ctx)

	if err := e.audit.RecordTransition(emitCtx, evt); err != nil {
		e.logger.Error("Failed to record audit entry",
			"error", err,
			"submission_id", submission.ID,
			"event_id", evt.ID,
		)
	}
	if err := e.notifier.NotifyStatusChange(emitCtx, evt); err != nil {
		e.logger.Error("Failed to deliver notification",
			"error", err,
			"submission_id", submission.ID,
			"event_id", evt.ID,
		)
	}
}

// Submit moves a draft into the pipeline. Only the draft's owner may submit.
func (e *workflowEngineImpl) Submit(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error) {
	return e.ApplyTransition(ctx, submissionID, actor, workflow.ActionSubmit, "")
}

// StartVerification claims a submitted form for verification
func (e *workflowEngineImpl) StartVerification(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error) {
	return e.ApplyTransition(ctx, submissionID, actor, workflow.ActionStartVerification, "")
}

// CompleteVerification marks the verification stage as passed
func (e *workflowEngineImpl) CompleteVerification(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return e.ApplyTransition(ctx, submissionID, actor, workflow.ActionCompleteVerification, comment)
}

// Approve gives a verified submission its final disposition
func (e *workflowEngineImpl) Approve(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return e.ApplyTransition(ctx, submissionID, actor, workflow.ActionApprove, comment)
}

// Reject terminates a submission under verification or verified.
// The comment is mandatory.
func (e *workflowEngineImpl) Reject(ctx context.Context, submissionID string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return e.ApplyTransition(ctx, submissionID, actor, workflow.ActionReject, comment)
}

// CloneRejected copies a rejected submission into a fresh draft so the owner
// can correct and resubmit. The rejected original is left untouched: the
// engine never resurrects a terminal submission in place.
func (e *workflowEngineImpl) CloneRejected(ctx context.Context, submissionID string, actor entity.Actor) (*entity.Submission, error) {
	original, err := e.repo.Load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if original.Status != workflow.StateRejected {
		return nil, fmt.Errorf("%w: submission %s is %s", ErrNotCloneable, submissionID, original.Status)
	}
	if actor.ID != original.SubmittedBy && !actor.IsAdmin() {
		return nil, authz.ErrUnauthorized
	}

	now := time.Now().UTC()
	clone := &entity.Submission{
		ID:          uuid.NewString(),
		TemplateID:  original.TemplateID,
		Department:  original.Department,
		Status:      workflow.StateDraft,
		SubmittedBy: original.SubmittedBy,
		Version:     1,
		FieldData:   original.FieldData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.repo.Create(ctx, clone); err != nil {
		e.logger.Error("Failed to clone submission", "error", err, "source_id", submissionID)
		return nil, err
	}

	e.logger.Info("Rejected submission cloned",
		"source_id", submissionID,
		"clone_id", clone.ID,
		"actor_id", actor.ID,
	)
	return clone, nil
}

// GetSubmission retrieves a submission with its full workflow history
func (e *workflowEngineImpl) GetSubmission(ctx context.Context, submissionID string) (*entity.Submission, error) {
	submission, err := e.repo.Load(ctx, submissionID)
	if err != nil {
		e.logger.Error("Failed to get submission", "error", err, "submission_id", submissionID)
		return nil, err
	}
	return submission, nil
}

// ListSubmissions retrieves a paginated list of submissions
func (e *workflowEngineImpl) ListSubmissions(ctx context.Context, limit, offset int) ([]*entity.Submission, error) {
	submissions, err := e.repo.List(ctx, limit, offset)
	if err != nil {
		e.logger.Error("Failed to list submissions", "error", err, "limit", limit, "offset", offset)
		return nil, err
	}
	return submissions, nil
}
