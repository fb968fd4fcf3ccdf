// Package draftcache holds best-effort review draft snapshots in Redis.
// A snapshot is written synchronously on every edit so a reload before
// the debounced server save fires does not lose work. Snapshots are
// non-authoritative: the review row in the database always wins, and a
// missing or unreadable snapshot simply means "no draft".
package draftcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an abandoned draft survives.
const DefaultTTL = 14 * 24 * time.Hour

// Snapshot is the locally-entered review state for one
// (application, reviewer) pair.
type Snapshot struct {
	Score    *float64          `json:"score"`
	Comments string            `json:"comments"`
	Ratings  map[string]string `json:"ratings"`
	Decision string            `json:"decision,omitempty"`
	Status   string            `json:"status"`
	SavedAt  time.Time         `json:"saved_at"`
}

// Store is a Redis-backed snapshot store.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a store on an existing Redis client. A non-positive
// ttl falls back to DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		prefix: "audition:draft:",
		ttl:    ttl,
	}
}

// NewStoreFromURL creates a store with its own connection, verified
// with a ping.
func NewStoreFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewStore(client, ttl), nil
}

// Close closes the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(applicationID, reviewerID int) string {
	return fmt.Sprintf("%s%d:%d", s.prefix, applicationID, reviewerID)
}

// Save writes the snapshot, refreshing its TTL.
func (s *Store) Save(ctx context.Context, applicationID, reviewerID int, snap Snapshot) error {
	if snap.Ratings == nil {
		snap.Ratings = map[string]string{}
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal draft snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key(applicationID, reviewerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists. A payload
// that fails to decode is treated as no draft and removed.
func (s *Store) Load(ctx context.Context, applicationID, reviewerID int) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(applicationID, reviewerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt snapshot: discard rather than surface.
		_ = s.client.Del(ctx, s.key(applicationID, reviewerID)).Err()
		return nil, nil
	}
	if snap.Ratings == nil {
		snap.Ratings = map[string]string{}
	}
	return &snap, nil
}

// Clear removes the snapshot. Clearing never touches the server-side
// review row.
func (s *Store) Clear(ctx context.Context, applicationID, reviewerID int) error {
	if err := s.client.Del(ctx, s.key(applicationID, reviewerID)).Err(); err != nil {
		return fmt.Errorf("clear draft snapshot: %w", err)
	}
	return nil
}
