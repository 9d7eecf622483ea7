// Package eventbus carries pipeline lifecycle events over watermill.
package eventbus

import (
	"context"
	"fmt"

	"github.com/dukex/cognipipe/pkg/events"
)

// Event is a pipeline lifecycle event.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is what the executor needs: events are keyed by run ID so
// every event of a run lands on the same Kafka partition.
type EventPublisher interface {
	Publish(ctx context.Context, runID string, event Event) error
	GenerateID() string
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event struct.
type EventHandler func(ctx context.Context, event any) error

// HandlerFor adapts fn into an EventHandler for events decoded as *T.
// An event of another type is an error, not a panic.
func HandlerFor[T any](fn func(ctx context.Context, event *T) error) EventHandler {
	return func(ctx context.Context, event any) error {
		e, ok := event.(*T)
		if !ok {
			return fmt.Errorf("unexpected event %T, want %T", event, e)
		}

		return fn(ctx, e)
	}
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
