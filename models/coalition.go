package models

import "time"

// Coalition groups organizations under a shared governing body
// (e.g. a regional drum-corps circuit).
type Coalition struct {
	CoalitionID int        `gorm:"primaryKey;column:coalition_id" json:"coalition_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// CoalitionAdmin assigns a user as administrator of a coalition.
type CoalitionAdmin struct {
	CoalitionAdminID int       `gorm:"primaryKey;column:coalition_admin_id" json:"coalition_admin_id"`
	CoalitionID      int       `gorm:"column:coalition_id" json:"coalition_id"`
	UserID           int       `gorm:"column:user_id" json:"user_id"`
	AssignedBy       int       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt         time.Time `gorm:"column:create_at" json:"create_at"`

	Coalition *Coalition `gorm:"foreignKey:CoalitionID" json:"coalition,omitempty"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Coalition) TableName() string {
	return "coalitions"
}

func (CoalitionAdmin) TableName() string {
	return "coalition_admins"
}
