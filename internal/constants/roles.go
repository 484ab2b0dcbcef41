package constants

import "strings"

type Role string

const (
	RoleOwner           Role = "owner"
	RoleGeneralServices Role = "general-services"
	RoleNursing         Role = "nursing"
	RoleSupervisor      Role = "supervisor"
)

var roleAliases = map[string]Role{
	"owner":            RoleOwner,
	"patrao":           RoleOwner,
	"general-services": RoleGeneralServices,
	"asg":              RoleGeneralServices,
	"nursing":          RoleNursing,
	"enfermaria":       RoleNursing,
	"supervisor":       RoleSupervisor,
	"supervisora":      RoleSupervisor,
}

// ParseRole accepts the canonical role values and the legacy short codes.
func ParseRole(s string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

// Assignable reports whether tasks and members may carry the role.
// Owner is a caller role only.
func (r Role) Assignable() bool {
	switch r {
	case RoleGeneralServices, RoleNursing, RoleSupervisor:
		return true
	}
	return false
}
