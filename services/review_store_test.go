package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"audition-management-api/models"
)

var reviewColumns = []string{
	"review_id", "application_id", "reviewer_id", "reviewer_name",
	"score", "comments", "ratings", "decision", "status",
	"submitted_at", "create_at", "update_at",
}

// Argument positions of a full-row reviews write (struct field order
// minus the primary key).
const (
	reviewArgReviewerName = 2
	reviewArgStatus       = 7
	reviewArgSubmittedAt  = 8
)

func reviewRow(id int64, status string, submittedAt driver.Value) []driver.Value {
	return []driver.Value{
		id, int64(1), int64(7), "Jordan Blake",
		8.5, "strong candidate", `{"music":"9"}`, nil, status,
		submittedAt, time.Now(), time.Now(),
	}
}

func userRow(id int64, first, last string) []driver.Value {
	return []driver.Value{id, first, last, first + "@corps.example.org", "x", int64(2), nil, nil, nil, nil, nil}
}

var userColumns = []string{
	"user_id", "first_name", "last_name", "email", "password",
	"role_id", "phone", "section", "create_at", "update_at", "delete_at",
}

func fetchReviewStep(applicationID, reviewerID int64, rows [][]driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `reviews`"),
		args:    []driver.Value{applicationID, reviewerID},
		columns: reviewColumns,
		rows:    rows,
	}
}

func fetchUserStep(userID int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `users`"),
		args:    []driver.Value{userID},
		columns: userColumns,
		rows:    [][]driver.Value{userRow(userID, "Jordan", "Blake")},
	}
}

func TestUpsertReviewRejectsSubmittedRow(t *testing.T) {
	submitted := models.ReviewStatusSubmitted
	steps := []*queryStep{
		fetchReviewStep(1, 7, [][]driver.Value{reviewRow(5, submitted, time.Now())}),
		fetchReviewStep(1, 7, [][]driver.Value{reviewRow(5, submitted, time.Now())}),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	store := NewGormReviewStore(db, nil)

	// Autosave (nil status) against a submitted row must be refused
	// before any write is attempted.
	if _, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{Comments: "late edit"}); !errors.Is(err, ErrReviewSubmitted) {
		t.Fatalf("expected ErrReviewSubmitted for autosave, got %v", err)
	}

	// An explicit re-submit is refused the same way.
	if _, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{Status: &submitted}); !errors.Is(err, ErrReviewSubmitted) {
		t.Fatalf("expected ErrReviewSubmitted for re-submit, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestUpsertReviewAutosaveKeepsStatus(t *testing.T) {
	update := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `reviews` SET"),
		anyArgs: true,
		result:  scriptedResult{rowsAffected: 1},
	}
	steps := []*queryStep{
		fetchReviewStep(1, 7, [][]driver.Value{reviewRow(5, models.ReviewStatusDraft, nil)}),
		fetchUserStep(7),
		update,
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	store := NewGormReviewStore(db, nil)

	review, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{
		Comments: "tightened up the cadence",
		Ratings:  map[string]string{"music": "8"},
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if review.Status != models.ReviewStatusDraft {
		t.Errorf("autosave changed status: %q", review.Status)
	}
	if review.SubmittedAt != nil {
		t.Errorf("autosave set submitted_at: %v", review.SubmittedAt)
	}
	if update.captured[reviewArgStatus] != models.ReviewStatusDraft {
		t.Errorf("written status: %v", update.captured[reviewArgStatus])
	}
	if update.captured[reviewArgSubmittedAt] != nil {
		t.Errorf("written submitted_at: %v", update.captured[reviewArgSubmittedAt])
	}
	if update.captured[reviewArgReviewerName] != "Jordan Blake" {
		t.Errorf("written reviewer_name: %v", update.captured[reviewArgReviewerName])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestUpsertReviewSubmitStampsSubmittedAt(t *testing.T) {
	insert := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("INSERT INTO `reviews`"),
		anyArgs: true,
		result:  scriptedResult{lastInsertID: 9, rowsAffected: 1},
	}
	steps := []*queryStep{
		fetchReviewStep(1, 7, nil),
		fetchUserStep(7),
		insert,
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	store := NewGormReviewStore(db, nil)

	submitted := models.ReviewStatusSubmitted
	review, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{
		Score:    f64Ptr(9),
		Comments: "ready for a contract",
		Status:   &submitted,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if review.ReviewID != 9 {
		t.Errorf("insert id not applied: %d", review.ReviewID)
	}
	if review.Status != models.ReviewStatusSubmitted || review.SubmittedAt == nil {
		t.Errorf("submit not stamped: %q %v", review.Status, review.SubmittedAt)
	}
	if insert.captured[reviewArgStatus] != models.ReviewStatusSubmitted {
		t.Errorf("written status: %v", insert.captured[reviewArgStatus])
	}
	if insert.captured[reviewArgSubmittedAt] == nil {
		t.Error("written submitted_at is null")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestUpsertReviewUnlockClearsSubmittedAt(t *testing.T) {
	update := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `reviews` SET"),
		anyArgs: true,
		result:  scriptedResult{rowsAffected: 1},
	}
	steps := []*queryStep{
		fetchReviewStep(1, 7, [][]driver.Value{reviewRow(5, models.ReviewStatusSubmitted, time.Now())}),
		fetchUserStep(7),
		update,
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	store := NewGormReviewStore(db, nil)

	draft := models.ReviewStatusDraft
	review, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{
		Comments: "reopening for another look",
		Status:   &draft,
	})
	if err != nil {
		t.Fatalf("downgrade failed: %v", err)
	}

	if review.Status != models.ReviewStatusDraft || review.SubmittedAt != nil {
		t.Errorf("downgrade not applied: %q %v", review.Status, review.SubmittedAt)
	}
	if update.captured[reviewArgSubmittedAt] != nil {
		t.Errorf("written submitted_at not cleared: %v", update.captured[reviewArgSubmittedAt])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

// One reviewer's save becomes visible to a colleague through the
// application-scoped review listing, not through the colleague's own
// row, which stays empty until they write one themselves.
func TestSavedReviewVisibleInApplicationListing(t *testing.T) {
	insert := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("INSERT INTO `reviews`"),
		anyArgs: true,
		result:  scriptedResult{lastInsertID: 9, rowsAffected: 1},
	}
	steps := []*queryStep{
		// Reviewer 7 saves.
		fetchReviewStep(1, 7, nil),
		fetchUserStep(7),
		insert,
		// Reviewer 12 has no row of their own.
		fetchReviewStep(1, 12, nil),
		// The application listing carries reviewer 7's save.
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews`"),
			args:    []driver.Value{int64(1)},
			columns: reviewColumns,
			rows:    [][]driver.Value{reviewRow(9, models.ReviewStatusDraft, nil)},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	store := NewGormReviewStore(db, nil)

	if _, err := store.UpsertReview(context.Background(), 1, 7, ReviewUpsert{
		Score:    f64Ptr(8.5),
		Comments: "strong candidate",
		Ratings:  map[string]string{"music": "9"},
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	own, err := store.FetchReview(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if own != nil {
		t.Fatalf("reviewer 12 should have no row, got %+v", own)
	}

	var all []models.Review
	if err := db.Where("application_id = ?", 1).
		Order("update_at DESC").
		Find(&all).Error; err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one review in the listing, got %d", len(all))
	}
	if all[0].ReviewerID != 7 || all[0].ReviewerName == nil || *all[0].ReviewerName != "Jordan Blake" {
		t.Errorf("listing row: %+v", all[0])
	}
	if all[0].Comments == nil || *all[0].Comments != "strong candidate" {
		t.Errorf("listing comments: %v", all[0].Comments)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
