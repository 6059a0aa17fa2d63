// Package events is an in-process publish/subscribe bus. Events are routed by
// name; handlers type-assert the concrete event they subscribed to.
package events

import (
	"context"
	"time"
)

// Event is anything published on a Bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the publish timestamp. Embed it in concrete events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed under their name.
type Bus interface {
	// Publish dispatches asynchronously; handler errors are only logged.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers in order and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}

// On subscribes fn to events of type E, using the zero value's name.
// Events of another type published under the same name are ignored.
func On[E Event](bus Bus, fn func(ctx context.Context, event E) error) {
	var zero E
	bus.Subscribe(zero.EventName(), HandlerFunc(func(ctx context.Context, event Event) error {
		typed, ok := event.(E)
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	}))
}
