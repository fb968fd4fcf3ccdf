package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestBroker(t *testing.T) *Broker {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBroker(client)
}

// awaitSubscribed gives the SUBSCRIBE command time to register before
// the test publishes; Pub/Sub has no delivery guarantee for messages
// sent earlier.
func awaitSubscribed() {
	time.Sleep(50 * time.Millisecond)
}

func recvEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed before an event arrived")
		}
		return ev
	case err := <-sub.Errors():
		t.Fatalf("unexpected subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	broker := setupTestBroker(t)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, 42)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()
	awaitSubscribed()

	sent := Event{
		ApplicationID: 42,
		ReviewID:      7,
		ReviewerID:    3,
		ReviewerName:  "Jordan Blake",
		Action:        ActionUpdate,
		Origin:        "session-a",
		At:            time.Now().UTC().Truncate(time.Second),
	}
	if err := broker.Publish(ctx, sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := recvEvent(t, sub)
	if got.ApplicationID != sent.ApplicationID || got.ReviewID != sent.ReviewID {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.ReviewerName != "Jordan Blake" || got.Action != ActionUpdate || got.Origin != "session-a" {
		t.Errorf("payload mismatch: %+v", got)
	}
}

func TestSubscriptionScopedToApplication(t *testing.T) {
	broker := setupTestBroker(t)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, 1)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()
	awaitSubscribed()

	// An event for another application must never reach this subscriber.
	if err := broker.Publish(ctx, Event{ApplicationID: 2, ReviewID: 9, Action: ActionInsert}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := broker.Publish(ctx, Event{ApplicationID: 1, ReviewID: 5, Action: ActionInsert}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := recvEvent(t, sub)
	if got.ApplicationID != 1 || got.ReviewID != 5 {
		t.Fatalf("received an event for the wrong application: %+v", got)
	}

	select {
	case ev, ok := <-sub.Events():
		if ok {
			t.Fatalf("unexpected extra event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionClose(t *testing.T) {
	broker := setupTestBroker(t)

	sub, err := broker.Subscribe(context.Background(), 3)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	// Close is idempotent.
	if err := sub.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected the event channel to close without events")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after Close")
	}
}

func TestSubscribeContextCancel(t *testing.T) {
	broker := setupTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := broker.Subscribe(ctx, 8)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()

	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected no events after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after context cancel")
	}
}
