package dto

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

type ClockEventInput struct {
	MemberID  string
	AccountID string
	EventType string
	Note      string
	At        *time.Time
}

// ClockImportRow is one already-parsed spreadsheet line.
type ClockImportRow struct {
	Line      int        `json:"line"`
	Name      string     `json:"name"`
	Role      string     `json:"role,omitempty"`
	EventType string     `json:"event_type,omitempty"`
	Note      string     `json:"note,omitempty"`
	At        *time.Time `json:"at,omitempty"`
}

type ImportError struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Inserted int           `json:"inserted"`
	Errors   []ImportError `json:"errors"`
}

type ClockFilter struct {
	Role     constants.Role
	MemberID string
	Limit    int
}
