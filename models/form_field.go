package models

import (
	"encoding/json"
	"time"
)

// Form field types supported by program application schemas.
const (
	FieldTypeShortText = "short_text"
	FieldTypeLongText  = "long_text"
	FieldTypeDate      = "date"
	FieldTypeSelect    = "select"
	FieldTypeCheckbox  = "checkbox"
	FieldTypeFile      = "file"
)

// FormField is one field of a program's application form schema.
// Fields are versioned per program; the review flow treats them as
// read-only configuration used to label and render answers.
type FormField struct {
	FieldID       int        `gorm:"primaryKey;column:field_id" json:"field_id"`
	ProgramID     int        `gorm:"column:program_id" json:"program_id"`
	SchemaVersion int        `gorm:"column:schema_version" json:"schema_version"`
	Label         string     `gorm:"column:label" json:"label"`
	FieldType     string     `gorm:"column:field_type" json:"field_type"`
	Required      bool       `gorm:"column:required" json:"required"`
	Options       *string    `gorm:"column:options" json:"options,omitempty"` // JSON array for select/checkbox
	MaxLength     *int       `gorm:"column:max_length" json:"max_length,omitempty"`
	WordLimit     *int       `gorm:"column:word_limit" json:"word_limit,omitempty"`
	FieldOrder    int        `gorm:"column:field_order" json:"field_order"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName specifies the table for FormField.
func (FormField) TableName() string {
	return "form_fields"
}

// ValidFieldType reports whether t is one of the supported field types.
func ValidFieldType(t string) bool {
	switch t {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeDate,
		FieldTypeSelect, FieldTypeCheckbox, FieldTypeFile:
		return true
	}
	return false
}

// OptionValues decodes the options JSON array. Returns nil when the
// field has no options.
func (f *FormField) OptionValues() ([]string, error) {
	if f.Options == nil || *f.Options == "" {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(*f.Options), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
