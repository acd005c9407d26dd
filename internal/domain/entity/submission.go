package entity

import (
	"time"

	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// Submission represents a filled-out form moving through the approval pipeline.
//
// Status, Version and Steps are mutated exclusively through the workflow
// engine's version-checked commit; FieldData is owned by the pre-submission
// editing flow and opaque to the engine.
type Submission struct {
	ID          string          `json:"id"`
	TemplateID  string          `json:"template_id"`
	Department  string          `json:"department"`
	Status      workflow.State  `json:"status"`
	SubmittedBy string          `json:"submitted_by"`
	Version     int64           `json:"version"`
	FieldData   string          `json:"field_data"`
	Steps       []*WorkflowStep `json:"steps"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the submission is in a terminal state
func (s *Submission) IsTerminal() bool {
	return s.Status.IsTerminal()
}

// WorkflowStep is one immutable record of an action taken against a submission
type WorkflowStep struct {
	ID           int64             `json:"id"`
	SubmissionID string            `json:"submission_id"`
	Kind         workflow.StepKind `json:"kind"`
	Outcome      workflow.Outcome  `json:"outcome"`
	Action       workflow.Action   `json:"action"`
	FromStatus   workflow.State    `json:"from_status"`
	ToStatus     workflow.State    `json:"to_status"`
	ActorID      string            `json:"actor_id"`
	Comment      string            `json:"comment,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}
