package workflow

// State represents a submission state in the approval lifecycle
type State string

const (
	StateDraft             State = "DRAFT"
	StateSubmitted         State = "SUBMITTED"
	StateUnderVerification State = "UNDER_VERIFICATION"
	StateVerified          State = "VERIFIED"
	StateApproved          State = "APPROVED"
	StateRejected          State = "REJECTED"
)

var validStates = map[State]bool{
	StateDraft:             true,
	StateSubmitted:         true,
	StateUnderVerification: true,
	StateVerified:          true,
	StateApproved:          true,
	StateRejected:          true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid submission state
func (s State) IsValid() bool {
	return validStates[s]
}
