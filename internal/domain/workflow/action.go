package workflow

// Action represents a request that can cause a state transition
type Action string

const (
	ActionSubmit               Action = "SUBMIT"
	ActionStartVerification    Action = "START_VERIFICATION"
	ActionCompleteVerification Action = "COMPLETE_VERIFICATION"
	ActionApprove              Action = "APPROVE"
	ActionReject               Action = "REJECT"
)

var validActions = map[Action]bool{
	ActionSubmit:               true,
	ActionStartVerification:    true,
	ActionCompleteVerification: true,
	ActionApprove:              true,
	ActionReject:               true,
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// IsValid returns true if the action is a known workflow action
func (a Action) IsValid() bool {
	return validActions[a]
}

// RequiresComment returns true if the action must carry a non-empty comment
func (a Action) RequiresComment() bool {
	return a == ActionReject
}
