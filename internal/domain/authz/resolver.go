// Package authz centralizes the role and department policy gating workflow
// actions. Every permission decision lives here so the policy is defined once
// and independently testable, instead of being repeated inline per handler.
package authz

import (
	"errors"

	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// ErrUnauthorized is returned when the actor lacks role or department
// permission for the requested action
var ErrUnauthorized = errors.New("actor is not authorized for this action")

// Policy holds the configurable parts of the authorization rules
type Policy struct {
	// AllowSelfApproval permits the submitting user to verify or approve
	// their own submission when they also hold an eligible role. Off by
	// default: department supervisors must be distinct from the operator
	// who submitted the form.
	AllowSelfApproval bool
}

// Resolver decides whether an actor may perform a workflow action against a
// submission. It is pure: no I/O, no clock, deny by default.
type Resolver struct {
	policy Policy
}

// NewResolver creates a resolver with the given policy
func NewResolver(policy Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Authorize returns nil if the actor may perform the action on the
// submission, ErrUnauthorized otherwise.
//
// The engine's transition table already excludes terminal states; the
// resolver re-validates as a second line of defense.
func (r *Resolver) Authorize(actor entity.Actor, submission *entity.Submission, action workflow.Action) error {
	if !r.isAuthorized(actor, submission, action) {
		return ErrUnauthorized
	}
	return nil
}

func (r *Resolver) isAuthorized(actor entity.Actor, submission *entity.Submission, action workflow.Action) bool {
	if submission == nil || !actor.HasValidRole() || !action.IsValid() {
		return false
	}

	// No action is ever authorized against a terminal submission
	if submission.IsTerminal() {
		return false
	}

	// Submitting is reserved for the draft's owner, whatever their role
	if action == workflow.ActionSubmit {
		return actor.ID == submission.SubmittedBy
	}

	if !r.policy.AllowSelfApproval && actor.ID == submission.SubmittedBy {
		return false
	}

	if actor.IsAdmin() {
		return true
	}

	// Non-admin roles act only within their own department
	if actor.Department != submission.Department {
		return false
	}

	switch action {
	case workflow.ActionStartVerification, workflow.ActionCompleteVerification:
		return actor.Role == entity.RoleSupervisor
	case workflow.ActionApprove:
		return actor.Role == entity.RoleAuditor
	case workflow.ActionReject:
		// Rejection rights follow the stage: supervisors reject during
		// verification, auditors reject verified submissions
		switch submission.Status {
		case workflow.StateUnderVerification:
			return actor.Role == entity.RoleSupervisor
		case workflow.StateVerified:
			return actor.Role == entity.RoleAuditor
		}
		return false
	}

	return false
}
