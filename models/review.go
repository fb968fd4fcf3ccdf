package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Review statuses
const (
	ReviewStatusDraft     = "draft"
	ReviewStatusSubmitted = "submitted"
)

// Review decisions (program-defined semantics; these are the built-in values).
const (
	ReviewDecisionAccept   = "accept"
	ReviewDecisionReject   = "reject"
	ReviewDecisionWaitlist = "waitlist"
	ReviewDecisionCallback = "callback"
)

// ErrMalformedRatings is returned when a stored ratings payload cannot
// be decoded as a string-to-string map.
var ErrMalformedRatings = errors.New("malformed ratings payload")

// Review is one reviewer's evaluation of one application. The
// (application_id, reviewer_id) pair is unique; saves are upserts and
// the row is never deleted.
type Review struct {
	ReviewID      int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	ApplicationID int        `gorm:"column:application_id;uniqueIndex:idx_review_app_reviewer" json:"application_id"`
	ReviewerID    int        `gorm:"column:reviewer_id;uniqueIndex:idx_review_app_reviewer" json:"reviewer_id"`
	ReviewerName  *string    `gorm:"column:reviewer_name" json:"reviewer_name,omitempty"`
	Score         *float64   `gorm:"column:score" json:"score"`
	Comments      *string    `gorm:"column:comments" json:"comments"`
	Ratings       *string    `gorm:"column:ratings" json:"ratings"` // JSON map[string]string
	Decision      *string    `gorm:"column:decision" json:"decision,omitempty"`
	Status        string     `gorm:"column:status" json:"status"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}

// RatingsMap decodes the ratings column. An empty or NULL column yields
// an empty map; anything undecodable yields ErrMalformedRatings.
func (r *Review) RatingsMap() (map[string]string, error) {
	if r.Ratings == nil || *r.Ratings == "" {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(*r.Ratings), &m); err != nil {
		return nil, ErrMalformedRatings
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// SetRatings encodes m into the ratings column. A nil map stores an
// empty JSON object.
func (r *Review) SetRatings(m map[string]string) error {
	if m == nil {
		m = map[string]string{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s := string(raw)
	r.Ratings = &s
	return nil
}
