package models

import "time"

// Notification is an in-app message for one user, typically created
// when an application status changes or a review is submitted.
type Notification struct {
	NotificationID int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         int        `gorm:"column:user_id" json:"user_id"`
	Title          string     `gorm:"column:title" json:"title"`
	Message        string     `gorm:"column:message" json:"message"`
	ApplicationID  *int       `gorm:"column:application_id" json:"application_id,omitempty"`
	IsRead         bool       `gorm:"column:is_read" json:"is_read"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
}

// TableName specifies the table for Notification.
func (Notification) TableName() string {
	return "notifications"
}
