package services

import (
	"context"
	"fmt"
	"sync"

	"audition-management-api/realtime"
)

// SessionManager holds the live review sessions of connected
// reviewers, one per (application, reviewer) pair, and pumps each
// application's realtime change events into its sessions. Sessions
// must be released on teardown; a session left behind keeps a
// subscription open and doubles event delivery on the next mount.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*managedSession

	store   ReviewStore
	drafts  DraftStore
	broker  *realtime.Broker
	profile ProfileLookup
	cfg     SessionConfig
}

type managedSession struct {
	session *ReviewSession
	sub     *realtime.Subscription
}

// NewSessionManager creates a manager. The broker may be nil, in which
// case sessions never receive realtime refreshes.
func NewSessionManager(store ReviewStore, drafts DraftStore, broker *realtime.Broker, profile ProfileLookup, cfg SessionConfig) *SessionManager {
	return &SessionManager{
		sessions: map[string]*managedSession{},
		store:    store,
		drafts:   drafts,
		broker:   broker,
		profile:  profile,
		cfg:      cfg,
	}
}

func sessionKey(applicationID, reviewerID int) string {
	return fmt.Sprintf("%d:%d", applicationID, reviewerID)
}

// Session returns the open session for the pair, opening one (and
// subscribing it to the application's change events) on first use.
func (m *SessionManager) Session(ctx context.Context, applicationID, reviewerID int) (*ReviewSession, error) {
	key := sessionKey(applicationID, reviewerID)

	m.mu.Lock()
	if ms, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return ms.session, nil
	}
	m.mu.Unlock()

	session, err := OpenReviewSession(ctx, m.store, m.drafts, m.profile, applicationID, reviewerID, m.cfg)
	if err != nil {
		return nil, err
	}

	ms := &managedSession{session: session}

	if m.broker != nil {
		// The subscription outlives the opening request.
		sub, err := m.broker.Subscribe(context.Background(), applicationID)
		if err != nil {
			session.Close()
			return nil, err
		}
		ms.sub = sub
		go func() {
			for ev := range sub.Events() {
				session.HandleEvent(ev)
			}
		}()
	}

	m.mu.Lock()
	// A concurrent open for the same pair may have won the race.
	if existing, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		if ms.sub != nil {
			ms.sub.Close()
		}
		session.Close()
		return existing.session, nil
	}
	m.sessions[key] = ms
	m.mu.Unlock()

	return session, nil
}

// Peek returns the session if one is open, without opening one.
func (m *SessionManager) Peek(applicationID, reviewerID int) (*ReviewSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[sessionKey(applicationID, reviewerID)]
	if !ok {
		return nil, false
	}
	return ms.session, true
}

// Release closes the pair's session and its subscription. Pending
// debounced saves are cancelled; any save already in flight completes
// server-side but its result is discarded.
func (m *SessionManager) Release(applicationID, reviewerID int) {
	key := sessionKey(applicationID, reviewerID)

	m.mu.Lock()
	ms, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	if ms.sub != nil {
		ms.sub.Close()
	}
	ms.session.Close()
}

// CloseAll releases every open session, e.g. on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*managedSession{}
	m.mu.Unlock()

	for _, ms := range sessions {
		if ms.sub != nil {
			ms.sub.Close()
		}
		ms.session.Close()
	}
}
