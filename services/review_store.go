package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"audition-management-api/models"
	"audition-management-api/realtime"

	"gorm.io/gorm"
)

// GormReviewStore implements ReviewStore against the database and
// publishes a realtime change event after every successful upsert.
// The write is a blind last-write-wins overwrite of the row: no
// version token, no field-level merge. Concurrent reviewers are
// reconciled by the change notification, not by the write path.
type GormReviewStore struct {
	db     *gorm.DB
	broker *realtime.Broker
}

// NewGormReviewStore creates a review store. The broker may be nil in
// tests that do not exercise notifications.
func NewGormReviewStore(db *gorm.DB, broker *realtime.Broker) *GormReviewStore {
	return &GormReviewStore{db: db, broker: broker}
}

// FetchReview returns the review row for one (application, reviewer)
// pair, or nil when none exists yet.
func (s *GormReviewStore) FetchReview(ctx context.Context, applicationID, reviewerID int) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).
		Where("application_id = ? AND reviewer_id = ?", applicationID, reviewerID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

// UpsertReview inserts or updates the (application, reviewer) review
// row. A nil Status keeps the row's current status; submitted rows
// reject status-preserving edits until an explicit downgrade to draft.
func (s *GormReviewStore) UpsertReview(ctx context.Context, applicationID, reviewerID int, up ReviewUpsert) (*models.Review, error) {
	existing, err := s.FetchReview(ctx, applicationID, reviewerID)
	if err != nil {
		return nil, err
	}

	// Server-side submission gate: the client enforces read-only
	// rendering, but this is the authoritative check.
	if existing != nil && existing.Status == models.ReviewStatusSubmitted {
		if up.Status == nil || *up.Status == models.ReviewStatusSubmitted {
			return nil, ErrReviewSubmitted
		}
	}

	now := time.Now()
	action := realtime.ActionUpdate

	var review models.Review
	if existing != nil {
		review = *existing
	} else {
		action = realtime.ActionInsert
		review = models.Review{
			ApplicationID: applicationID,
			ReviewerID:    reviewerID,
			Status:        models.ReviewStatusDraft,
			CreateAt:      now,
		}
	}

	var reviewer models.User
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND delete_at IS NULL", reviewerID).
		First(&reviewer).Error; err == nil {
		name := reviewer.DisplayName()
		review.ReviewerName = &name
	}

	review.Score = up.Score
	comments := up.Comments
	review.Comments = &comments
	if up.Decision != "" {
		decision := up.Decision
		review.Decision = &decision
	} else {
		review.Decision = nil
	}
	if err := review.SetRatings(up.Ratings); err != nil {
		return nil, fmt.Errorf("failed to encode ratings: %w", err)
	}

	if up.Status != nil {
		switch *up.Status {
		case models.ReviewStatusSubmitted:
			if review.Status != models.ReviewStatusSubmitted {
				review.SubmittedAt = &now
			}
			review.Status = models.ReviewStatusSubmitted
		case models.ReviewStatusDraft:
			review.Status = models.ReviewStatusDraft
			review.SubmittedAt = nil
		default:
			return nil, fmt.Errorf("invalid review status %q", *up.Status)
		}
	}
	review.UpdateAt = now

	if err := s.db.WithContext(ctx).Save(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	s.publish(ctx, &review, action, up.Origin)
	return &review, nil
}

func (s *GormReviewStore) publish(ctx context.Context, review *models.Review, action, origin string) {
	if s.broker == nil {
		return
	}
	name := ""
	if review.ReviewerName != nil {
		name = *review.ReviewerName
	}
	ev := realtime.Event{
		ApplicationID: review.ApplicationID,
		ReviewID:      review.ReviewID,
		ReviewerID:    review.ReviewerID,
		ReviewerName:  name,
		Action:        action,
		Origin:        origin,
		At:            time.Now(),
	}
	// Notification failure must not fail the save; subscribers
	// reconcile on the next event.
	if err := s.broker.Publish(persistentContext(ctx), ev); err != nil {
		log.Printf("Warning: failed to publish review event for application %d: %v", review.ApplicationID, err)
	}
}

// LookupReviewerName resolves a user id to a display name for the
// reconciler's fallback chain.
func (s *GormReviewStore) LookupReviewerName(userID int) (string, bool) {
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		return "", false
	}
	return user.DisplayName(), true
}
