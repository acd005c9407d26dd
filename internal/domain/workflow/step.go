package workflow

// StepKind classifies the stage a workflow step belongs to
type StepKind string

const (
	StepKindSubmission   StepKind = "SUBMISSION"
	StepKindVerification StepKind = "VERIFICATION"
	StepKindApproval     StepKind = "APPROVAL"
)

// Outcome records the result of a workflow step
type Outcome string

const (
	OutcomePending  Outcome = "PENDING"
	OutcomeApproved Outcome = "APPROVED"
	OutcomeRejected Outcome = "REJECTED"
)

// String returns the string representation of the step kind
func (k StepKind) String() string {
	return string(k)
}

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// StatusFromStep derives the submission state implied by the most recent
// workflow step. Status never drifts from history: repositories use this to
// verify the two agree before committing.
func StatusFromStep(kind StepKind, outcome Outcome) (State, bool) {
	if outcome == OutcomeRejected {
		return StateRejected, true
	}
	switch {
	case kind == StepKindSubmission && outcome == OutcomePending:
		return StateSubmitted, true
	case kind == StepKindVerification && outcome == OutcomePending:
		return StateUnderVerification, true
	case kind == StepKindVerification && outcome == OutcomeApproved:
		return StateVerified, true
	case kind == StepKindApproval && outcome == OutcomeApproved:
		return StateApproved, true
	}
	return "", false
}
