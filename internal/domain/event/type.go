package event

// Type identifies the type of domain event
type Type string

const (
	TypeSubmissionCreated  Type = "submission.created"
	TypeSubmissionCloned   Type = "submission.cloned"
	TypeStatusChanged      Type = "submission.status_changed"
	TypeSubmissionApproved Type = "submission.approved"
	TypeSubmissionRejected Type = "submission.rejected"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSubmissionCreated,
		TypeSubmissionCloned,
		TypeStatusChanged,
		TypeSubmissionApproved,
		TypeSubmissionRejected:
		return true
	default:
		return false
	}
}
