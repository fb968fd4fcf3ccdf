// Package realtime delivers review change notifications over Redis
// Pub/Sub. Events are published after every review upsert and consumed
// by open review sessions and the SSE endpoint. Delivery is
// at-most-once; a slow subscriber may miss events, which the consuming
// session tolerates by reloading full state rather than applying deltas.
package realtime

import "time"

// Event actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
)

// Event describes one insert/update of a review row. Origin is the
// saving session's identifier; a session drops events carrying its own
// origin so its saves do not trigger a redundant reload of state it
// already holds.
type Event struct {
	ApplicationID int       `json:"application_id"`
	ReviewID      int       `json:"review_id"`
	ReviewerID    int       `json:"reviewer_id"`
	ReviewerName  string    `json:"reviewer_name,omitempty"`
	Action        string    `json:"action"`
	Origin        string    `json:"origin,omitempty"`
	At            time.Time `json:"at"`
}
