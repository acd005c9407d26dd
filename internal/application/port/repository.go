package port

import (
	"context"

	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// SubmissionRepository defines persistence operations for form submissions.
//
// Commit is the single mutation point for status and history: the new status
// and its workflow step are written atomically, conditional on the version
// the caller read. Reads may be stale; Commit always checks the authoritative
// row.
type SubmissionRepository interface {
	// Create persists a new submission in its initial state
	Create(ctx context.Context, submission *entity.Submission) error

	// Load retrieves a submission and its ordered workflow history.
	// Returns ErrNotFound if no such submission exists.
	Load(ctx context.Context, id string) (*entity.Submission, error)

	// Commit applies one transition: sets the new status, increments the
	// version and appends the step, all in one atomic write keyed on
	// (id, expectedVersion). Returns ErrConcurrentModification when the
	// persisted version no longer equals expectedVersion.
	Commit(ctx context.Context, id string, expectedVersion int64, newStatus workflow.State, step *entity.WorkflowStep) error

	// List retrieves a page of submissions ordered by creation time,
	// without their step history
	List(ctx context.Context, limit, offset int) ([]*entity.Submission, error)
}
