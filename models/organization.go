package models

import "time"

// Organization is a drum corps that runs audition and scholarship programs.
type Organization struct {
	OrgID       int        `gorm:"primaryKey;column:org_id" json:"org_id"`
	CoalitionID *int       `gorm:"column:coalition_id" json:"coalition_id,omitempty"`
	Name        string     `gorm:"column:name" json:"name"`
	Slug        string     `gorm:"column:slug;unique" json:"slug"`
	City        *string    `gorm:"column:city" json:"city,omitempty"`
	Website     *string    `gorm:"column:website" json:"website,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Coalition *Coalition `gorm:"foreignKey:CoalitionID" json:"coalition,omitempty"`
}

// OrgAdmin assigns a user as administrator of one organization.
type OrgAdmin struct {
	OrgAdminID int       `gorm:"primaryKey;column:org_admin_id" json:"org_admin_id"`
	OrgID      int       `gorm:"column:org_id" json:"org_id"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	AssignedBy int       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt   time.Time `gorm:"column:create_at" json:"create_at"`

	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Organization) TableName() string {
	return "organizations"
}

func (OrgAdmin) TableName() string {
	return "org_admins"
}
