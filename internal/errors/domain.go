package errors

var (
	ErrNoValidAssignee    = Validation("no valid assignee")
	ErrNoActiveTeam       = Validation("no active team for role")
	ErrInvalidStatus      = Validation("invalid execution status")
	ErrInvalidRole        = Validation("invalid target role")
	ErrMemberRoleConflict = Validation("member exists with another role")
	ErrTaskNotFound       = NotFound("task not found")
	ErrMemberNotFound     = NotFound("member not found")
	ErrAccountNotFound    = NotFound("account not found")
	ErrMemberNotInTeam    = Authorization("member does not belong to caller")
	ErrPrivilegeRequired  = Authorization("privileged role required")
)
