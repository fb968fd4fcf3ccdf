package services

import (
	"errors"
	"regexp"
	"testing"

	"audition-management-api/models"
)

func TestCanTransitionApplication(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.ApplicationStatusDraft, models.ApplicationStatusSubmitted, true},
		{models.ApplicationStatusSubmitted, models.ApplicationStatusReviewing, true},
		{models.ApplicationStatusReviewing, models.ApplicationStatusAccepted, true},
		{models.ApplicationStatusReviewing, models.ApplicationStatusRejected, true},
		{models.ApplicationStatusReviewing, models.ApplicationStatusWaitlisted, true},

		// No skipping forward.
		{models.ApplicationStatusDraft, models.ApplicationStatusReviewing, false},
		{models.ApplicationStatusDraft, models.ApplicationStatusAccepted, false},
		{models.ApplicationStatusSubmitted, models.ApplicationStatusAccepted, false},

		// No downgrades.
		{models.ApplicationStatusSubmitted, models.ApplicationStatusDraft, false},
		{models.ApplicationStatusReviewing, models.ApplicationStatusSubmitted, false},
		{models.ApplicationStatusAccepted, models.ApplicationStatusReviewing, false},

		// Terminal states are dead ends.
		{models.ApplicationStatusAccepted, models.ApplicationStatusRejected, false},
		{models.ApplicationStatusRejected, models.ApplicationStatusWaitlisted, false},
		{models.ApplicationStatusWaitlisted, models.ApplicationStatusAccepted, false},

		{models.ApplicationStatusDraft, models.ApplicationStatusDraft, false},
		{"bogus", models.ApplicationStatusSubmitted, false},
	}

	for _, tc := range tests {
		if got := CanTransitionApplication(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionApplication(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalApplicationStatus(t *testing.T) {
	terminal := []string{
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWaitlisted,
	}
	for _, status := range terminal {
		if !models.TerminalApplicationStatus(status) {
			t.Errorf("expected %q to be terminal", status)
		}
	}

	open := []string{
		models.ApplicationStatusDraft,
		models.ApplicationStatusSubmitted,
		models.ApplicationStatusReviewing,
	}
	for _, status := range open {
		if models.TerminalApplicationStatus(status) {
			t.Errorf("expected %q to stay open", status)
		}
	}
}

func TestTransitionApplicationWritesHistory(t *testing.T) {
	update := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `applications` SET"),
		anyArgs: true,
		result:  scriptedResult{rowsAffected: 1},
	}
	history := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("INSERT INTO `application_status_history`"),
		anyArgs: true,
		result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
	}

	db, state, cleanup := newScriptedGormDB(t, []*queryStep{update, history})
	defer cleanup()

	app := &models.Application{ApplicationID: 3, Status: models.ApplicationStatusReviewing}
	reason := "standout audition"

	if err := TransitionApplication(db, app, models.ApplicationStatusAccepted, 99, &reason); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	if app.Status != models.ApplicationStatusAccepted {
		t.Errorf("application not updated in memory: %q", app.Status)
	}

	// Map-based update: SET status, update_at WHERE application_id.
	if update.captured[0] != models.ApplicationStatusAccepted {
		t.Errorf("written status: %v", update.captured[0])
	}
	if update.captured[2] != int64(3) {
		t.Errorf("update scoped to wrong application: %v", update.captured[2])
	}

	// History row: application_id, old_status, new_status, changed_by,
	// reason, created_at.
	if history.captured[0] != int64(3) {
		t.Errorf("history application_id: %v", history.captured[0])
	}
	if history.captured[1] != models.ApplicationStatusReviewing {
		t.Errorf("history old_status: %v", history.captured[1])
	}
	if history.captured[2] != models.ApplicationStatusAccepted {
		t.Errorf("history new_status: %v", history.captured[2])
	}
	if history.captured[3] != int64(99) {
		t.Errorf("history changed_by: %v", history.captured[3])
	}
	if history.captured[4] != "standout audition" {
		t.Errorf("history reason: %v", history.captured[4])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionApplicationStampsSubmittedAt(t *testing.T) {
	update := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `applications` SET"),
		anyArgs: true,
		result:  scriptedResult{rowsAffected: 1},
	}
	history := &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("INSERT INTO `application_status_history`"),
		anyArgs: true,
		result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
	}

	db, state, cleanup := newScriptedGormDB(t, []*queryStep{update, history})
	defer cleanup()

	app := &models.Application{ApplicationID: 4, Status: models.ApplicationStatusDraft}

	if err := TransitionApplication(db, app, models.ApplicationStatusSubmitted, 4, nil); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	// Map-based update: SET status, submitted_at, update_at WHERE
	// application_id.
	if update.captured[0] != models.ApplicationStatusSubmitted {
		t.Errorf("written status: %v", update.captured[0])
	}
	if update.captured[1] == nil {
		t.Error("submitted_at not written on submit")
	}
	if app.SubmittedAt == nil {
		t.Error("submitted_at not set in memory")
	}
	if history.captured[4] != nil {
		t.Errorf("history reason should be null: %v", history.captured[4])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionApplicationRejectsInvalid(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	app := &models.Application{ApplicationID: 5, Status: models.ApplicationStatusDraft}

	err := TransitionApplication(db, app, models.ApplicationStatusAccepted, 1, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if app.Status != models.ApplicationStatusDraft {
		t.Errorf("application mutated on rejected transition: %q", app.Status)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
