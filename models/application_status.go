package models

import "time"

// ApplicationStatus is the status catalog row (display name and
// terminal flag for each status code).
type ApplicationStatus struct {
	StatusID   int        `gorm:"primaryKey;column:status_id" json:"status_id"`
	StatusCode string     `gorm:"column:status_code;unique" json:"status_code"`
	StatusName string     `gorm:"column:status_name" json:"status_name"`
	Terminal   bool       `gorm:"column:terminal" json:"terminal"`
	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt   time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// ApplicationStatusHistory tracks historical status changes for applications.
type ApplicationStatusHistory struct {
	HistoryID     int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	OldStatus     *string   `gorm:"column:old_status" json:"old_status"`
	NewStatus     string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy     int       `gorm:"column:changed_by" json:"changed_by"`
	Reason        *string   `gorm:"column:reason" json:"reason"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (ApplicationStatus) TableName() string {
	return "application_statuses"
}

func (ApplicationStatusHistory) TableName() string {
	return "application_status_history"
}
