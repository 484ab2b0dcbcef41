package model

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

type Task struct {
	ID                  string                    `gorm:"primaryKey;size:36" json:"id"`
	Title               string                    `gorm:"size:180;not null" json:"title"`
	Description         string                    `gorm:"type:text" json:"description"`
	TargetRole          constants.Role            `gorm:"type:varchar(30);not null;index" json:"target_role"`
	Recurrence          constants.Recurrence      `gorm:"type:varchar(10);not null;default:once" json:"recurrence"`
	DestinationMode     constants.DestinationMode `gorm:"type:varchar(12);not null;default:individual" json:"destination_mode"`
	PrimaryAssigneeID   *string                   `gorm:"size:36" json:"primary_assignee_id"`
	PrimaryAssigneeName *string                   `gorm:"size:150" json:"primary_assignee_name"`
	CreatedBy           *string                   `gorm:"size:36" json:"created_by,omitempty"`
	DueDate             *time.Time                `json:"due_date,omitempty"`
	DocumentRef         *string                   `gorm:"size:255" json:"document_ref,omitempty"`
	CreatedAt           time.Time                 `gorm:"index" json:"created_at"`

	Executions []Execution `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
