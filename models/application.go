package models

import "time"

// Application statuses. Transitions are monotonic:
// draft -> submitted -> reviewing -> accepted|rejected|waitlisted.
const (
	ApplicationStatusDraft      = "draft"
	ApplicationStatusSubmitted  = "submitted"
	ApplicationStatusReviewing  = "reviewing"
	ApplicationStatusAccepted   = "accepted"
	ApplicationStatusRejected   = "rejected"
	ApplicationStatusWaitlisted = "waitlisted"
)

// Application is one applicant's submission to one program.
type Application struct {
	ApplicationID int        `gorm:"primaryKey;column:application_id" json:"application_id"`
	ProgramID     int        `gorm:"column:program_id" json:"program_id"`
	ApplicantID   int        `gorm:"column:applicant_id" json:"applicant_id"`
	Status        string     `gorm:"column:status" json:"status"`
	SchemaVersion int        `gorm:"column:schema_version" json:"schema_version"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Program   *Program            `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Applicant *User               `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Answers   []ApplicationAnswer `gorm:"foreignKey:ApplicationID" json:"answers,omitempty"`
}

// ApplicationAnswer holds one field's answer, keyed by form field id.
// File answers reference the uploaded file instead of carrying a value.
type ApplicationAnswer struct {
	AnswerID      int       `gorm:"primaryKey;column:answer_id" json:"answer_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	FieldID       int       `gorm:"column:field_id" json:"field_id"`
	Value         string    `gorm:"column:value" json:"value"`
	FileID        *int      `gorm:"column:file_id" json:"file_id,omitempty"`
	CreateAt      time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time `gorm:"column:update_at" json:"update_at"`

	Field *FormField  `gorm:"foreignKey:FieldID" json:"field,omitempty"`
	File  *FileUpload `gorm:"foreignKey:FileID" json:"file,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}

func (ApplicationAnswer) TableName() string {
	return "application_answers"
}

// TerminalApplicationStatus reports whether s ends the application
// lifecycle.
func TerminalApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWaitlisted:
		return true
	}
	return false
}
