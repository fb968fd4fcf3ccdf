package draftcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, 0), s
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	score := 8.5
	snap := Snapshot{
		Score:    &score,
		Comments: "solid marching technique",
		Ratings:  map[string]string{"music": "9", "visual": "7"},
		Decision: "accept",
		Status:   "draft",
	}
	if err := store.Save(ctx, 1, 7, snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx, 1, 7)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot")
	}
	if got.Score == nil || *got.Score != 8.5 {
		t.Errorf("score: %v", got.Score)
	}
	if got.Comments != "solid marching technique" {
		t.Errorf("comments: %q", got.Comments)
	}
	if got.Ratings["music"] != "9" || got.Ratings["visual"] != "7" {
		t.Errorf("ratings: %v", got.Ratings)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt not stamped on save")
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store, _ := setupTestStore(t)

	got, err := store.Load(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil snapshot, got %+v", got)
	}
}

func TestLoadCorruptSnapshotDiscarded(t *testing.T) {
	store, s := setupTestStore(t)
	ctx := context.Background()

	key := store.key(1, 7)
	if err := s.Set(key, "{definitely not json"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	got, err := store.Load(ctx, 1, 7)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt payload should read as no draft, got %+v", got)
	}
	if s.Exists(key) {
		t.Error("corrupt payload not removed")
	}
}

func TestSnapshotsKeyedPerReviewer(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, 7, Snapshot{Comments: "reviewer seven"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, 1, 8, Snapshot{Comments: "reviewer eight"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx, 1, 7)
	if err != nil || got == nil {
		t.Fatalf("load failed: %v %v", got, err)
	}
	if got.Comments != "reviewer seven" {
		t.Errorf("snapshots bled across reviewers: %q", got.Comments)
	}
}

func TestClearSnapshot(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, 7, Snapshot{Comments: "to be cleared"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, 1, 7); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	got, err := store.Load(ctx, 1, 7)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("snapshot survived clear: %+v", got)
	}

	// Clearing an absent snapshot is not an error.
	if err := store.Clear(ctx, 1, 7); err != nil {
		t.Fatalf("clear of missing snapshot failed: %v", err)
	}
}

func TestSnapshotExpires(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewStore(client, time.Minute)

	ctx := context.Background()
	if err := store.Save(ctx, 1, 7, Snapshot{Comments: "short-lived"}); err != nil {
		t.Fatal(err)
	}

	s.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, 1, 7)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("snapshot should have expired, got %+v", got)
	}
}
