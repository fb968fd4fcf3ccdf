package models

import "time"

// Program kinds
const (
	ProgramKindAudition    = "audition"
	ProgramKindScholarship = "scholarship"
)

// Program statuses
const (
	ProgramStatusActive   = "active"
	ProgramStatusArchived = "archived"
)

// Program is one audition or scholarship intake run by an organization
// for a given season.
type Program struct {
	ProgramID     int        `gorm:"primaryKey;column:program_id" json:"program_id"`
	OrgID         int        `gorm:"column:org_id" json:"org_id"`
	Name          string     `gorm:"column:name" json:"name"`
	Kind          string     `gorm:"column:kind" json:"kind"`
	SeasonYear    int        `gorm:"column:season_year" json:"season_year"`
	Description   *string    `gorm:"column:description" json:"description,omitempty"`
	OpensAt       *time.Time `gorm:"column:opens_at" json:"opens_at,omitempty"`
	ClosesAt      *time.Time `gorm:"column:closes_at" json:"closes_at,omitempty"`
	Status        string     `gorm:"column:status" json:"status"`
	SchemaVersion int        `gorm:"column:schema_version" json:"schema_version"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
}

// ProgramReviewer assigns a user as reviewer for one program.
type ProgramReviewer struct {
	ProgramReviewerID int       `gorm:"primaryKey;column:program_reviewer_id" json:"program_reviewer_id"`
	ProgramID         int       `gorm:"column:program_id" json:"program_id"`
	UserID            int       `gorm:"column:user_id" json:"user_id"`
	AssignedBy        int       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt          time.Time `gorm:"column:create_at" json:"create_at"`

	Program *Program `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Program) TableName() string {
	return "programs"
}

func (ProgramReviewer) TableName() string {
	return "program_reviewers"
}

// IsOpen reports whether the program currently accepts applications.
func (p *Program) IsOpen(now time.Time) bool {
	if p.Status != ProgramStatusActive {
		return false
	}
	if p.OpensAt != nil && now.Before(*p.OpensAt) {
		return false
	}
	if p.ClosesAt != nil && now.After(*p.ClosesAt) {
		return false
	}
	return true
}
