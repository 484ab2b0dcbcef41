package model

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

type Member struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	AccountID string         `gorm:"size:36;not null;uniqueIndex:idx_team_members_account_name,priority:1" json:"account_id"`
	Name      string         `gorm:"size:150;not null;uniqueIndex:idx_team_members_account_name,priority:2" json:"name"`
	Role      constants.Role `gorm:"type:varchar(30);not null;index" json:"role"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Member) TableName() string {
	return "team_members"
}
