package services

import (
	"errors"
	"testing"
	"time"

	"audition-management-api/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestNewReviewStateDefaults(t *testing.T) {
	state := NewReviewState(42, 7)

	if state.ApplicationID != 42 || state.ReviewerID != 7 {
		t.Fatalf("unexpected identity: app=%d reviewer=%d", state.ApplicationID, state.ReviewerID)
	}
	if state.Score != nil {
		t.Errorf("expected nil score, got %v", *state.Score)
	}
	if state.Comments != "" {
		t.Errorf("expected empty comments, got %q", state.Comments)
	}
	if state.Ratings == nil || len(state.Ratings) != 0 {
		t.Errorf("expected empty non-nil ratings map, got %v", state.Ratings)
	}
	if state.Status != models.ReviewStatusDraft {
		t.Errorf("expected draft status, got %q", state.Status)
	}
}

func TestResolveReviewerName(t *testing.T) {
	lookup := func(userID int) (string, bool) {
		if userID == 7 {
			return "Jordan Blake", true
		}
		return "", false
	}

	tests := []struct {
		name       string
		embedded   *string
		reviewerID int
		lookup     ProfileLookup
		want       string
	}{
		{"embedded name wins", strPtr("Sam Rivers"), 7, lookup, "Sam Rivers"},
		{"empty embedded falls through", strPtr(""), 7, lookup, "Jordan Blake"},
		{"lookup by id", nil, 7, lookup, "Jordan Blake"},
		{"lookup miss falls back to id", nil, 99, lookup, "99"},
		{"nil lookup falls back to id", nil, 7, nil, "7"},
		{"no identity at all", nil, 0, lookup, NoReviewerName},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveReviewerName(tc.embedded, tc.reviewerID, tc.lookup)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReconcileReviewNilRowKeepsPrev(t *testing.T) {
	prev := NewReviewState(1, 7)
	prev.Comments = "typed locally"
	prev.Ratings["tone"] = "4"

	next, err := ReconcileReview(nil, prev, nil)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if next.Comments != "typed locally" {
		t.Errorf("local comments lost: %q", next.Comments)
	}
	if next.Ratings["tone"] != "4" {
		t.Errorf("local ratings lost: %v", next.Ratings)
	}
	if next.Status != models.ReviewStatusDraft {
		t.Errorf("expected draft, got %q", next.Status)
	}
}

func TestReconcileReviewServerFieldsWin(t *testing.T) {
	now := time.Now()
	fetched := &models.Review{
		ReviewID:      10,
		ApplicationID: 1,
		ReviewerID:    7,
		ReviewerName:  strPtr("Jordan Blake"),
		Score:         f64Ptr(8.5),
		Comments:      strPtr("great visual package"),
		Decision:      strPtr(models.ReviewDecisionAccept),
		Status:        models.ReviewStatusSubmitted,
		SubmittedAt:   &now,
		UpdateAt:      now,
	}
	if err := fetched.SetRatings(map[string]string{"music": "9", "visual": "8"}); err != nil {
		t.Fatalf("set ratings: %v", err)
	}

	prev := NewReviewState(1, 7)
	prev.Comments = "stale local text"
	prev.Ratings["music"] = "2"

	next, err := ReconcileReview(fetched, prev, nil)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if next.ReviewID != 10 {
		t.Errorf("review id not taken from row: %d", next.ReviewID)
	}
	if next.ReviewerName != "Jordan Blake" {
		t.Errorf("reviewer name: %q", next.ReviewerName)
	}
	if next.Score == nil || *next.Score != 8.5 {
		t.Errorf("score: %v", next.Score)
	}
	if next.Comments != "great visual package" {
		t.Errorf("comments: %q", next.Comments)
	}
	if next.Ratings["music"] != "9" || next.Ratings["visual"] != "8" {
		t.Errorf("ratings: %v", next.Ratings)
	}
	if next.Status != models.ReviewStatusSubmitted || next.SubmittedAt == nil {
		t.Errorf("status not taken from row: %q %v", next.Status, next.SubmittedAt)
	}
}

func TestReconcileReviewAbsentFieldsFallBack(t *testing.T) {
	fetched := &models.Review{
		ReviewID:      11,
		ApplicationID: 1,
		ReviewerID:    7,
		Status:        models.ReviewStatusDraft,
	}

	prev := NewReviewState(1, 7)
	prev.Score = f64Ptr(6)
	prev.Comments = "kept from before"
	prev.Ratings["brass"] = "7"

	next, err := ReconcileReview(fetched, prev, nil)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if next.Score == nil || *next.Score != 6 {
		t.Errorf("score should fall back to prev: %v", next.Score)
	}
	if next.Comments != "kept from before" {
		t.Errorf("comments should fall back to prev: %q", next.Comments)
	}
	if next.Ratings["brass"] != "7" {
		t.Errorf("ratings should fall back to prev: %v", next.Ratings)
	}
}

func TestReconcileReviewMalformedRatings(t *testing.T) {
	fetched := &models.Review{
		ReviewID:      12,
		ApplicationID: 1,
		ReviewerID:    7,
		Ratings:       strPtr("{not json"),
		Status:        models.ReviewStatusDraft,
	}

	prev := NewReviewState(1, 7)
	prev.Comments = "intact"

	next, err := ReconcileReview(fetched, prev, nil)
	if !errors.Is(err, models.ErrMalformedRatings) {
		t.Fatalf("expected ErrMalformedRatings, got %v", err)
	}
	if next.Comments != "intact" {
		t.Errorf("prev state should be returned unchanged on decode failure: %q", next.Comments)
	}
}
