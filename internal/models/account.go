package model

import (
	"time"

	"care-tasks.com/care-tasks/internal/constants"
)

// Account is the tenant a team is enrolled under. It mirrors a verified login identity.
type Account struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:150" json:"name"`
	Role      constants.Role `gorm:"type:varchar(30);not null" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}
