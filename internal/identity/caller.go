package identity

import "care-tasks.com/care-tasks/internal/constants"

// Caller is the verified identity handed over by the authentication layer.
type Caller struct {
	ID   string
	Role constants.Role
	Name string
}

// Privileged callers act on any account's members.
func (c Caller) Privileged() bool {
	return c.Role == constants.RoleOwner || c.Role == constants.RoleSupervisor
}
