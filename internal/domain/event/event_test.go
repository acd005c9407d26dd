package event

import (
	"testing"
	"time"

	"github.com/plantdocs/formflow/internal/domain/workflow"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{
			name:      "submission created",
			eventType: TypeSubmissionCreated,
			want:      true,
		},
		{
			name:      "submission cloned",
			eventType: TypeSubmissionCloned,
			want:      true,
		},
		{
			name:      "status changed",
			eventType: TypeStatusChanged,
			want:      true,
		},
		{
			name:      "submission approved",
			eventType: TypeSubmissionApproved,
			want:      true,
		},
		{
			name:      "submission rejected",
			eventType: TypeSubmissionRejected,
			want:      true,
		},
		{
			name:      "unknown type",
			eventType: Type("submission.archived"),
			want:      false,
		},
		{
			name:      "empty type",
			eventType: Type(""),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTransitionEvent(t *testing.T) {
	occurredAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	evt := NewTransitionEvent("S1", workflow.ActionSubmit,
		workflow.StateDraft, workflow.StateSubmitted,
		"operator-1", "QC", "", occurredAt)

	if evt.ID == "" {
		t.Error("expected a generated event ID")
	}
	if evt.Type != TypeStatusChanged {
		t.Errorf("expected status_changed, got %s", evt.Type)
	}
	if evt.ResourceType != ResourceTypeFormSubmission {
		t.Errorf("unexpected resource type %s", evt.ResourceType)
	}
	if evt.SubmissionID != "S1" || evt.ActorID != "operator-1" || evt.Department != "QC" {
		t.Errorf("event fields not carried over: %+v", evt)
	}
	if !evt.OccurredAt.Equal(occurredAt) {
		t.Errorf("expected occurred_at %v, got %v", occurredAt, evt.OccurredAt)
	}
}

func TestNewTransitionEvent_TerminalTypes(t *testing.T) {
	tests := []struct {
		name string
		to   workflow.State
		want Type
	}{
		{"approved", workflow.StateApproved, TypeSubmissionApproved},
		{"rejected", workflow.StateRejected, TypeSubmissionRejected},
		{"verified", workflow.StateVerified, TypeStatusChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := NewTransitionEvent("S1", workflow.ActionApprove,
				workflow.StateVerified, tt.to, "auditor-1", "QC", "ok", time.Now())
			if evt.Type != tt.want {
				t.Errorf("expected %s, got %s", tt.want, evt.Type)
			}
		})
	}
}
