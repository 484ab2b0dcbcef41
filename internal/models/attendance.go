package model

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

// AttendanceRecord is append-only. Nothing updates or deletes it.
type AttendanceRecord struct {
	ID         string               `gorm:"primaryKey;size:36" json:"id"`
	MemberID   string               `gorm:"size:36;not null;index" json:"member_id"`
	AccountID  string               `gorm:"size:36;not null" json:"account_id"`
	MemberName string               `gorm:"size:150" json:"member_name"`
	EventType  constants.ClockEvent `gorm:"type:varchar(10);not null;default:in" json:"event_type"`
	RecordedAt time.Time            `gorm:"not null;index" json:"recorded_at"`
	Note       *string              `gorm:"size:255" json:"note,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
