// Package events provides a lightweight in-process event bus for
// decoupling modules.
package events

import (
	"context"
	"time"
)

// Event is the interface all domain events implement.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp half of the Event interface.
type BaseEvent struct {
	Timestamp time.Time
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent creates a BaseEvent stamped with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler processes an event. Returned errors are logged by the bus,
// never propagated to the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes published events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to handlers asynchronously.
	Publish(ctx context.Context, event Event)
	// PublishSync delivers the event and waits for all handlers.
	PublishSync(ctx context.Context, event Event)
	// Subscribe registers a handler for the named event.
	Subscribe(eventName string, handler Handler)
}
