package workflow

// BuildSubmissionMachine creates a state machine configured for the
// form-submission approval lifecycle, positioned at the given state.
//
// Role and department checks are not part of the graph; they belong to the
// authorization resolver. The machine only answers whether an action is a
// legal edge from the current state and which step it produces.
func BuildSubmissionMachine(initialState State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateDraft).
		Permit(ActionSubmit, StateSubmitted, StepKindSubmission, OutcomePending)

	builder.Configure(StateSubmitted).
		Permit(ActionStartVerification, StateUnderVerification, StepKindVerification, OutcomePending)

	builder.Configure(StateUnderVerification).
		Permit(ActionCompleteVerification, StateVerified, StepKindVerification, OutcomeApproved).
		Permit(ActionReject, StateRejected, StepKindVerification, OutcomeRejected)

	builder.Configure(StateVerified).
		Permit(ActionApprove, StateApproved, StepKindApproval, OutcomeApproved).
		Permit(ActionReject, StateRejected, StepKindApproval, OutcomeRejected)

	// APPROVED and REJECTED are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
