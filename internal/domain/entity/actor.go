package entity

// Role constants for actors in the approval pipeline
const (
	RoleOperator   = "OPERATOR"
	RoleSupervisor = "SUPERVISOR"
	RoleAuditor    = "AUDITOR"
	RoleAdmin      = "ADMIN"
)

var validRoles = map[string]bool{
	RoleOperator:   true,
	RoleSupervisor: true,
	RoleAuditor:    true,
	RoleAdmin:      true,
}

// Actor identifies the user requesting a workflow action
type Actor struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// HasValidRole returns true if the actor's role is a known role
func (a Actor) HasValidRole() bool {
	return validRoles[a.Role]
}

// IsAdmin returns true if the actor holds the cross-department admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
