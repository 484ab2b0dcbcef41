package dto

import "time"

type CreateTaskRequest struct {
	Title           string     `json:"title" validate:"required,max=180"`
	Description     string     `json:"description"`
	TargetRole      string     `json:"target_role" validate:"required"`
	DueDate         *time.Time `json:"due_date"`
	DocumentRef     string     `json:"document_ref" validate:"max=255"`
	Recurrence      string     `json:"recurrence"`
	DestinationMode string     `json:"destination_mode"`
	AssigneeIDs     []string   `json:"assignee_ids" validate:"dive,required"`
}

type SetExecutionStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	Note          string `json:"note"`
	AttachmentRef string `json:"attachment_ref" validate:"max=255"`
	MemberName    string `json:"member_name" validate:"max=150"`
}

type EnrollMemberRequest struct {
	Name string `json:"name" validate:"required,max=150"`
	Role string `json:"role" validate:"required"`
}

type ClockEventRequest struct {
	MemberID  string     `json:"member_id" validate:"required"`
	EventType string     `json:"event_type"`
	Note      string     `json:"note" validate:"max=255"`
	At        *time.Time `json:"at"`
}
