package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "audition:reviews:"

// reviewChannel returns the Pub/Sub channel for one application's
// review changes. Scoping the channel by application id is what makes
// subscription filtering correct: a subscriber never sees another
// application's events.
func reviewChannel(applicationID int) string {
	return fmt.Sprintf("%s%d", channelPrefix, applicationID)
}

// Broker publishes and subscribes to review change events. It is safe
// for concurrent use.
type Broker struct {
	rdb *redis.Client
}

// NewBroker creates a broker on an existing Redis client.
func NewBroker(client *redis.Client) *Broker {
	return &Broker{rdb: client}
}

// NewBrokerFromURL creates a broker with its own connection, verified
// with a ping.
func NewBrokerFromURL(ctx context.Context, redisURL string) (*Broker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Broker{rdb: client}, nil
}

// Close closes the underlying Redis connection.
func (b *Broker) Close() error {
	return b.rdb.Close()
}

// Publish sends ev to subscribers of its application's channel.
func (b *Broker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal review event: %w", err)
	}
	if err := b.rdb.Publish(ctx, reviewChannel(ev.ApplicationID), payload).Err(); err != nil {
		return fmt.Errorf("publish review event: %w", err)
	}
	return nil
}

// Subscription is a live stream of one application's review change
// events. Callers must call Close when done; leaving a subscription
// open across a remount duplicates every delivery.
type Subscription struct {
	applicationID int
	events        chan Event
	errors        chan error
	cancel        context.CancelFunc
	once          sync.Once
}

// Events returns the event channel. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Errors returns the channel carrying decode failures. Malformed
// payloads are reported here and skipped, never delivered as events.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe starts listening for review changes on one application.
// Events are delivered on a buffered channel (size 16); context
// cancellation also stops the subscription.
func (b *Broker) Subscribe(ctx context.Context, applicationID int) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, reviewChannel(applicationID))

	eventsChan := make(chan Event, 16)
	errorsChan := make(chan error, 16)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("decode review event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				// The channel is already scoped by application id;
				// this guards against a misaddressed publish.
				if ev.ApplicationID != applicationID {
					continue
				}

				select {
				case eventsChan <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		applicationID: applicationID,
		events:        eventsChan,
		errors:        errorsChan,
		cancel:        cancelFunc,
	}, nil
}
