package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"audition-management-api/draftcache"
	"audition-management-api/models"
	"audition-management-api/realtime"

	"github.com/google/uuid"
)

// Debounce windows. Edits wait the longer quiet period before a server
// save; realtime-triggered refreshes use the short one so a burst of
// notifications (or a double subscription) collapses into one reload.
const (
	DefaultEditDebounce    = 750 * time.Millisecond
	DefaultRefreshDebounce = 100 * time.Millisecond
)

var (
	// ErrReviewSubmitted is returned for edits while the submission
	// gate is locked. Unlock must be called first.
	ErrReviewSubmitted = errors.New("review already submitted")

	// ErrSessionClosed is returned for any operation after Close.
	ErrSessionClosed = errors.New("review session closed")
)

// ReviewUpsert is the payload of one save call. A nil Status keeps the
// row's current status (autosave); an explicit status transitions it.
type ReviewUpsert struct {
	Score    *float64
	Comments string
	Ratings  map[string]string
	Decision string
	Status   *string
	Origin   string
}

// ReviewStore performs the server-side review procedures. Saves are
// blind last-write-wins upserts; the store never merges concurrent
// field edits.
type ReviewStore interface {
	FetchReview(ctx context.Context, applicationID, reviewerID int) (*models.Review, error)
	UpsertReview(ctx context.Context, applicationID, reviewerID int, up ReviewUpsert) (*models.Review, error)
}

// DraftStore is the snapshot cache consulted on open and written
// synchronously on every edit. Satisfied by *draftcache.Store.
type DraftStore interface {
	Save(ctx context.Context, applicationID, reviewerID int, snap draftcache.Snapshot) error
	Load(ctx context.Context, applicationID, reviewerID int) (*draftcache.Snapshot, error)
	Clear(ctx context.Context, applicationID, reviewerID int) error
}

// SessionConfig tunes a ReviewSession. Zero values take the defaults
// above.
type SessionConfig struct {
	EditDebounce    time.Duration
	RefreshDebounce time.Duration

	// OnChange is invoked with a copy of the state after every
	// reconciliation (save result or realtime reload). Optional.
	OnChange func(ReviewState)

	// OnError receives asynchronous save/reload failures. Optional;
	// the default logs them. Nothing is retried: the caller's next
	// edit or an explicit save re-triggers the write.
	OnError func(error)
}

// ReviewSession owns one reviewer's open view of one application's
// review. It reconciles server state, coalesces edits behind a
// debounce, mirrors every edit into the draft cache, and applies
// realtime change events from other reviewers.
//
// At most one save timer and one refresh timer are pending at a time;
// a new edit or event restarts the pending timer rather than queueing
// another save.
type ReviewSession struct {
	mu sync.Mutex

	applicationID int
	reviewerID    int
	origin        string

	state  ReviewState
	closed bool

	saveTimer    *time.Timer
	refreshTimer *time.Timer

	store   ReviewStore
	drafts  DraftStore
	profile ProfileLookup
	cfg     SessionConfig
}

// OpenReviewSession loads the current review row and any cached draft
// snapshot and returns a live session. With no prior row the state is
// the type default (empty ratings, nil score, empty comments, draft),
// seeded from the snapshot when one survives.
func OpenReviewSession(ctx context.Context, store ReviewStore, drafts DraftStore, profile ProfileLookup, applicationID, reviewerID int, cfg SessionConfig) (*ReviewSession, error) {
	if cfg.EditDebounce <= 0 {
		cfg.EditDebounce = DefaultEditDebounce
	}
	if cfg.RefreshDebounce <= 0 {
		cfg.RefreshDebounce = DefaultRefreshDebounce
	}

	row, err := store.FetchReview(ctx, applicationID, reviewerID)
	if err != nil {
		return nil, err
	}

	state := NewReviewState(applicationID, reviewerID)

	if row == nil && drafts != nil {
		snap, err := drafts.Load(ctx, applicationID, reviewerID)
		if err == nil && snap != nil {
			state.Score = snap.Score
			state.Comments = snap.Comments
			state.Ratings = snap.Ratings
			state.Decision = snap.Decision
		}
		// A load failure means no draft; the cache is best-effort.
	}

	state, err = ReconcileReview(row, state, profile)
	if err != nil {
		return nil, err
	}

	return &ReviewSession{
		applicationID: applicationID,
		reviewerID:    reviewerID,
		origin:        uuid.New().String(),
		state:         state,
		store:         store,
		drafts:        drafts,
		profile:       profile,
		cfg:           cfg,
	}, nil
}

// Origin is the session's identifier, attached to outgoing saves so
// the session can ignore the realtime echo of its own writes.
func (s *ReviewSession) Origin() string {
	return s.origin
}

// State returns a copy of the current in-memory state.
func (s *ReviewSession) State() ReviewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ReviewSession) snapshotLocked() ReviewState {
	state := s.state
	ratings := make(map[string]string, len(s.state.Ratings))
	for k, v := range s.state.Ratings {
		ratings[k] = v
	}
	state.Ratings = ratings
	return state
}

// SetScore records a score edit.
func (s *ReviewSession) SetScore(score *float64) error {
	return s.edit(func(st *ReviewState) { st.Score = score })
}

// SetComments records a comments edit.
func (s *ReviewSession) SetComments(comments string) error {
	return s.edit(func(st *ReviewState) { st.Comments = comments })
}

// SetRating records one structured rating edit. An empty value removes
// the key.
func (s *ReviewSession) SetRating(key, value string) error {
	return s.edit(func(st *ReviewState) {
		if value == "" {
			delete(st.Ratings, key)
			return
		}
		st.Ratings[key] = value
	})
}

// SetDecision records a decision edit.
func (s *ReviewSession) SetDecision(decision string) error {
	return s.edit(func(st *ReviewState) { st.Decision = decision })
}

// edit applies one local change: rejected while submitted, mirrored to
// the draft cache synchronously, and scheduled for a debounced save.
func (s *ReviewSession) edit(apply func(*ReviewState)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.Status == models.ReviewStatusSubmitted {
		s.mu.Unlock()
		return ErrReviewSubmitted
	}

	apply(&s.state)
	snap := s.draftSnapshotLocked()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.cfg.EditDebounce, s.flush)
	s.mu.Unlock()

	// The cache write is synchronous with the edit so a reload before
	// the debounce fires does not lose data. Failure is non-fatal.
	if s.drafts != nil {
		if err := s.drafts.Save(context.Background(), s.applicationID, s.reviewerID, snap); err != nil {
			s.reportError(err)
		}
	}
	return nil
}

func (s *ReviewSession) draftSnapshotLocked() draftcache.Snapshot {
	ratings := make(map[string]string, len(s.state.Ratings))
	for k, v := range s.state.Ratings {
		ratings[k] = v
	}
	return draftcache.Snapshot{
		Score:    s.state.Score,
		Comments: s.state.Comments,
		Ratings:  ratings,
		Decision: s.state.Decision,
		Status:   s.state.Status,
		SavedAt:  time.Now(),
	}
}

// flush runs when the edit debounce settles: one save carrying the
// final edited values.
func (s *ReviewSession) flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	state := s.snapshotLocked()
	up := ReviewUpsert{
		Score:    state.Score,
		Comments: state.Comments,
		Ratings:  state.Ratings,
		Decision: state.Decision,
		Status:   nil, // autosave keeps the current status
		Origin:   s.origin,
	}
	s.mu.Unlock()

	row, err := s.store.UpsertReview(context.Background(), s.applicationID, s.reviewerID, up)
	if err != nil {
		s.reportError(err)
		return
	}
	s.applyRow(row)
}

// Flush forces any pending debounced save to run now. Used by tests
// and by explicit save buttons.
func (s *ReviewSession) Flush() {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.flush()
	}
}

// Submit transitions the review to submitted and locks further edits.
// Any pending autosave is folded into the submit call. The cached
// draft snapshot is cleared: the server row is now authoritative.
func (s *ReviewSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.Status == models.ReviewStatusSubmitted {
		s.mu.Unlock()
		return ErrReviewSubmitted
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	status := models.ReviewStatusSubmitted
	state := s.snapshotLocked()
	up := ReviewUpsert{
		Score:    state.Score,
		Comments: state.Comments,
		Ratings:  state.Ratings,
		Decision: state.Decision,
		Status:   &status,
		Origin:   s.origin,
	}
	s.mu.Unlock()

	row, err := s.store.UpsertReview(ctx, s.applicationID, s.reviewerID, up)
	if err != nil {
		return err
	}
	s.applyRow(row)

	if s.drafts != nil {
		if err := s.drafts.Clear(ctx, s.applicationID, s.reviewerID); err != nil {
			s.reportError(err)
		}
	}
	return nil
}

// Unlock reverts a submitted review to draft so fields become editable
// again. The downgrade is persisted server-side; local and server
// state never diverge.
func (s *ReviewSession) Unlock(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.Status != models.ReviewStatusSubmitted {
		s.mu.Unlock()
		return nil
	}
	status := models.ReviewStatusDraft
	state := s.snapshotLocked()
	up := ReviewUpsert{
		Score:    state.Score,
		Comments: state.Comments,
		Ratings:  state.Ratings,
		Decision: state.Decision,
		Status:   &status,
		Origin:   s.origin,
	}
	s.mu.Unlock()

	row, err := s.store.UpsertReview(ctx, s.applicationID, s.reviewerID, up)
	if err != nil {
		return err
	}
	s.applyRow(row)
	return nil
}

// HandleEvent feeds one realtime change event into the session. Events
// for other applications and echoes of this session's own saves are
// ignored; anything else schedules a debounced reload of shared state.
func (s *ReviewSession) HandleEvent(ev realtime.Event) {
	if ev.ApplicationID != s.applicationID {
		return
	}
	if ev.Origin != "" && ev.Origin == s.origin {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
	}
	s.refreshTimer = time.AfterFunc(s.cfg.RefreshDebounce, s.reload)
	s.mu.Unlock()
}

// reload refetches the review row and reconciles it into local state.
func (s *ReviewSession) reload() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	row, err := s.store.FetchReview(context.Background(), s.applicationID, s.reviewerID)
	if err != nil {
		s.reportError(err)
		return
	}
	s.applyRow(row)
}

// applyRow reconciles a fetched or saved row into the session state.
// Results arriving after Close are discarded.
func (s *ReviewSession) applyRow(row *models.Review) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next, err := ReconcileReview(row, s.state, s.profile)
	if err != nil {
		s.mu.Unlock()
		s.reportError(err)
		return
	}
	s.state = next
	onChange := s.cfg.OnChange
	state := s.snapshotLocked()
	s.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}

func (s *ReviewSession) reportError(err error) {
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
		return
	}
	log.Printf("review session (application %d): %v", s.applicationID, err)
}

// Close cancels pending timers and marks the session dead. In-flight
// saves may still complete server-side; their results are dropped.
func (s *ReviewSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
}
