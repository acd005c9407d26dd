package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// ResourceTypeFormSubmission is the resource type carried by every event the
// workflow engine emits.
const ResourceTypeFormSubmission = "form_submission"

// TransitionEvent describes one committed workflow transition. It is the only
// contract between the engine and its audit/notification collaborators.
type TransitionEvent struct {
	ID           string          `json:"id"`
	Type         Type            `json:"type"`
	ResourceType string          `json:"resource_type"`
	SubmissionID string          `json:"submission_id"`
	Action       workflow.Action `json:"action"`
	FromStatus   workflow.State  `json:"from_status"`
	ToStatus     workflow.State  `json:"to_status"`
	ActorID      string          `json:"actor_id"`
	Department   string          `json:"department"`
	Comment      string          `json:"comment,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewTransitionEvent creates an event for a committed transition
func NewTransitionEvent(submissionID string, action workflow.Action, from, to workflow.State, actorID, department, comment string, occurredAt time.Time) *TransitionEvent {
	return &TransitionEvent{
		ID:           uuid.NewString(),
		Type:         typeForTransition(to),
		ResourceType: ResourceTypeFormSubmission,
		SubmissionID: submissionID,
		Action:       action,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      actorID,
		Department:   department,
		Comment:      comment,
		OccurredAt:   occurredAt,
	}
}

func typeForTransition(to workflow.State) Type {
	switch to {
	case workflow.StateApproved:
		return TypeSubmissionApproved
	case workflow.StateRejected:
		return TypeSubmissionRejected
	default:
		return TypeStatusChanged
	}
}
