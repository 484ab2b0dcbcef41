package dto

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

// CreateTaskInput carries raw enum values; the task service parses and validates them.
type CreateTaskInput struct {
	Title           string
	Description     string
	TargetRole      string
	DueDate         *time.Time
	DocumentRef     string
	CreatorID       string
	Recurrence      string
	DestinationMode string
	AssigneeIDs     []string
}

type SetExecutionStatusInput struct {
	TaskID         string
	MemberID       string
	Status         string
	Note           string
	AttachmentRef  string
	MemberNameHint string
}

type TaskFilter struct {
	Role               constants.Role
	MemberID           string
	IncludeValidations bool
}

type DestinataryView struct {
	ExecutionID   string                    `json:"execution_id"`
	MemberID      *string                   `json:"member_id"`
	MemberName    string                    `json:"member_name"`
	Status        constants.ExecutionStatus `json:"status"`
	Note          string                    `json:"note"`
	AttachmentRef *string                   `json:"attachment_ref,omitempty"`
	CompletedAt   *time.Time                `json:"completed_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

type TaskView struct {
	ID                  string                    `json:"id"`
	Title               string                    `json:"title"`
	Description         string                    `json:"description"`
	TargetRole          constants.Role            `json:"target_role"`
	Recurrence          constants.Recurrence      `json:"recurrence"`
	DestinationMode     constants.DestinationMode `json:"destination_mode"`
	PrimaryAssigneeID   *string                   `json:"primary_assignee_id"`
	PrimaryAssigneeName *string                   `json:"primary_assignee_name"`
	CreatedBy           *string                   `json:"created_by,omitempty"`
	DueDate             *time.Time                `json:"due_date,omitempty"`
	DocumentRef         *string                   `json:"document_ref,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`

	CompletedCount   int               `json:"completed_count"`
	ExecutionCount   int               `json:"execution_count"`
	Destinataries    []DestinataryView `json:"destinataries"`
	Validations      []DestinataryView `json:"validations,omitempty"`
	CurrentExecution *DestinataryView  `json:"current_execution,omitempty"`
}
