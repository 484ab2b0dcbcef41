package model

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

// Execution is the per-assignee progress row of a Task. (TaskID, MemberID) is unique;
// a nil MemberID marks an unresolved destination.
type Execution struct {
	ID            string                    `gorm:"primaryKey;size:36" json:"id"`
	TaskID        string                    `gorm:"size:36;not null;uniqueIndex:idx_task_executions_task_member,priority:1" json:"task_id"`
	MemberID      *string                   `gorm:"size:36;uniqueIndex:idx_task_executions_task_member,priority:2" json:"member_id"`
	MemberName    string                    `gorm:"size:150" json:"member_name"`
	Status        constants.ExecutionStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Note          string                    `gorm:"type:text" json:"note"`
	AttachmentRef *string                   `gorm:"size:255" json:"attachment_ref,omitempty"`
	CompletedAt   *time.Time                `json:"completed_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func (Execution) TableName() string {
	return "task_executions"
}
