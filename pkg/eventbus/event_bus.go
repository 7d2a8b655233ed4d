// Package eventbus provides the event publication infrastructure that
// carries deal transition events to the notification consumer. The
// engine publishes fire-and-forget: delivery failure never rolls back
// or fails a committed transition.
package eventbus

import (
	"context"

	"github.com/paddockhq/dealflow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event interface{}) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
