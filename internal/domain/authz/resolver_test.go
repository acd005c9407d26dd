package authz

import (
	"errors"
	"testing"

	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
)

func submission(status workflow.State) *entity.Submission {
	return &entity.Submission{
		ID:          "S1",
		TemplateID:  "T1",
		Department:  "QC",
		Status:      status,
		SubmittedBy: "operator-1",
	}
}

func TestResolver_Authorize(t *testing.T) {
	resolver := NewResolver(Policy{})

	tests := []struct {
		name    string
		actor   entity.Actor
		status  workflow.State
		action  workflow.Action
		allowed bool
	}{
		{
			name:    "owner submits own draft",
			actor:   entity.Actor{ID: "operator-1", Role: entity.RoleOperator, Department: "QC"},
			status:  workflow.StateDraft,
			action:  workflow.ActionSubmit,
			allowed: true,
		},
		{
			name:    "non-owner cannot submit",
			actor:   entity.Actor{ID: "operator-2", Role: entity.RoleOperator, Department: "QC"},
			status:  workflow.StateDraft,
			action:  workflow.ActionSubmit,
			allowed: false,
		},
		{
			name:    "admin cannot submit someone else's draft",
			actor:   entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"},
			status:  workflow.StateDraft,
			action:  workflow.ActionSubmit,
			allowed: false,
		},
		{
			name:    "same-department supervisor starts verification",
			actor:   entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"},
			status:  workflow.StateSubmitted,
			action:  workflow.ActionStartVerification,
			allowed: true,
		},
		{
			name:    "other-department supervisor denied",
			actor:   entity.Actor{ID: "sup-2", Role: entity.RoleSupervisor, Department: "ASSEMBLY"},
			status:  workflow.StateSubmitted,
			action:  workflow.ActionStartVerification,
			allowed: false,
		},
		{
			name:    "admin crosses departments",
			actor:   entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"},
			status:  workflow.StateSubmitted,
			action:  workflow.ActionStartVerification,
			allowed: true,
		},
		{
			name:    "same-department supervisor completes verification",
			actor:   entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"},
			status:  workflow.StateUnderVerification,
			action:  workflow.ActionCompleteVerification,
			allowed: true,
		},
		{
			name:    "supervisor rejects during verification",
			actor:   entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"},
			status:  workflow.StateUnderVerification,
			action:  workflow.ActionReject,
			allowed: true,
		},
		{
			name:    "supervisor cannot reject a verified submission",
			actor:   entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"},
			status:  workflow.StateVerified,
			action:  workflow.ActionReject,
			allowed: false,
		},
		{
			name:    "auditor approves verified submission in own department",
			actor:   entity.Actor{ID: "aud-1", Role: entity.RoleAuditor, Department: "QC"},
			status:  workflow.StateVerified,
			action:  workflow.ActionApprove,
			allowed: true,
		},
		{
			name:    "auditor rejects verified submission",
			actor:   entity.Actor{ID: "aud-1", Role: entity.RoleAuditor, Department: "QC"},
			status:  workflow.StateVerified,
			action:  workflow.ActionReject,
			allowed: true,
		},
		{
			name:    "auditor cannot verify",
			actor:   entity.Actor{ID: "aud-1", Role: entity.RoleAuditor, Department: "QC"},
			status:  workflow.StateUnderVerification,
			action:  workflow.ActionCompleteVerification,
			allowed: false,
		},
		{
			name:    "operator cannot approve",
			actor:   entity.Actor{ID: "operator-2", Role: entity.RoleOperator, Department: "QC"},
			status:  workflow.StateVerified,
			action:  workflow.ActionApprove,
			allowed: false,
		},
		{
			name:    "unknown role fails closed",
			actor:   entity.Actor{ID: "x", Role: "SUPERUSER", Department: "QC"},
			status:  workflow.StateVerified,
			action:  workflow.ActionApprove,
			allowed: false,
		},
		{
			name:    "unknown action fails closed",
			actor:   entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"},
			status:  workflow.StateVerified,
			action:  workflow.Action("ESCALATE"),
			allowed: false,
		},
		{
			name:    "admin denied on approved submission",
			actor:   entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"},
			status:  workflow.StateApproved,
			action:  workflow.ActionReject,
			allowed: false,
		},
		{
			name:    "admin denied on rejected submission",
			actor:   entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"},
			status:  workflow.StateRejected,
			action:  workflow.ActionApprove,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.Authorize(tt.actor, submission(tt.status), tt.action)
			if tt.allowed && err != nil {
				t.Errorf("Authorize() = %v, want nil", err)
			}
			if !tt.allowed && !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Authorize() = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestResolver_SelfApprovalPolicy(t *testing.T) {
	// Submitter also holds the supervisor role in the same department
	actor := entity.Actor{ID: "operator-1", Role: entity.RoleSupervisor, Department: "QC"}
	sub := submission(workflow.StateUnderVerification)

	strict := NewResolver(Policy{AllowSelfApproval: false})
	if err := strict.Authorize(actor, sub, workflow.ActionCompleteVerification); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("strict policy: Authorize() = %v, want ErrUnauthorized", err)
	}

	relaxed := NewResolver(Policy{AllowSelfApproval: true})
	if err := relaxed.Authorize(actor, sub, workflow.ActionCompleteVerification); err != nil {
		t.Errorf("relaxed policy: Authorize() = %v, want nil", err)
	}
}

func TestResolver_NilSubmissionFailsClosed(t *testing.T) {
	resolver := NewResolver(Policy{})
	actor := entity.Actor{ID: "admin-1", Role: entity.RoleAdmin, Department: "HQ"}

	if err := resolver.Authorize(actor, nil, workflow.ActionApprove); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authorize(nil submission) = %v, want ErrUnauthorized", err)
	}
}
