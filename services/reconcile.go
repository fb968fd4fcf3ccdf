package services

import (
	"strconv"
	"time"

	"audition-management-api/models"
)

// NoReviewerName is displayed when a review row has neither an
// embedded reviewer name nor a resolvable reviewer id.
const NoReviewerName = "No reviewer assigned"

// ProfileLookup resolves a user id to a display name. The second
// return is false when no profile is found.
type ProfileLookup func(userID int) (string, bool)

// ReviewState is the in-memory view of one reviewer's review of one
// application, merged from the server row, prior local edits, and
// type defaults.
type ReviewState struct {
	ReviewID      int               `json:"review_id"`
	ApplicationID int               `json:"application_id"`
	ReviewerID    int               `json:"reviewer_id"`
	ReviewerName  string            `json:"reviewer_name"`
	Score         *float64          `json:"score"`
	Comments      string            `json:"comments"`
	Ratings       map[string]string `json:"ratings"`
	Decision      string            `json:"decision,omitempty"`
	Status        string            `json:"status"`
	SubmittedAt   *time.Time        `json:"submitted_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewReviewState returns the default state for an application with no
// prior review row: empty ratings, nil score, empty comments, draft.
func NewReviewState(applicationID, reviewerID int) ReviewState {
	return ReviewState{
		ApplicationID: applicationID,
		ReviewerID:    reviewerID,
		Ratings:       map[string]string{},
		Status:        models.ReviewStatusDraft,
	}
}

// ResolveReviewerName applies the display-name fallback chain: embedded
// name, then profile lookup by id, then the raw id, then
// NoReviewerName. The chain exists because the naming join may
// legitimately be absent before anyone has started a review.
func ResolveReviewerName(name *string, reviewerID int, lookup ProfileLookup) string {
	if name != nil && *name != "" {
		return *name
	}
	if reviewerID != 0 {
		if lookup != nil {
			if resolved, ok := lookup(reviewerID); ok && resolved != "" {
				return resolved
			}
		}
		return strconv.Itoa(reviewerID)
	}
	return NoReviewerName
}

// ReconcileReview merges a freshly fetched review row into the
// previous in-memory state. Server-owned fields (id, reviewer
// identity, status, timestamps) always follow the fetched row; content
// fields present on the row win over stale previous values, while
// absent ones fall back to the previous value and then to the type
// default. A nil fetched row leaves prev untouched.
func ReconcileReview(fetched *models.Review, prev ReviewState, lookup ProfileLookup) (ReviewState, error) {
	next := prev
	if next.Ratings == nil {
		next.Ratings = map[string]string{}
	}
	if next.Status == "" {
		next.Status = models.ReviewStatusDraft
	}

	if fetched == nil {
		next.ReviewerName = ResolveReviewerName(nil, next.ReviewerID, lookup)
		return next, nil
	}

	next.ReviewID = fetched.ReviewID
	next.ApplicationID = fetched.ApplicationID
	next.ReviewerID = fetched.ReviewerID
	next.Status = fetched.Status
	next.SubmittedAt = fetched.SubmittedAt
	next.UpdatedAt = fetched.UpdateAt
	next.ReviewerName = ResolveReviewerName(fetched.ReviewerName, fetched.ReviewerID, lookup)

	if fetched.Score != nil {
		next.Score = fetched.Score
	}
	if fetched.Comments != nil {
		next.Comments = *fetched.Comments
	}
	if fetched.Decision != nil {
		next.Decision = *fetched.Decision
	}
	if fetched.Ratings != nil && *fetched.Ratings != "" {
		ratings, err := fetched.RatingsMap()
		if err != nil {
			return prev, err
		}
		next.Ratings = ratings
	}

	return next, nil
}
