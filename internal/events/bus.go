// Package events provides the in-process event bus used to fan domain
// events out to observers (metrics, debug taps) without coupling them to
// the reconciler.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(VolumeChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so unwrap the
	// interface with a type switch.
	switch e := ev.(type) {
	case EntryAddedEvent:
		event.Publish(b.dispatcher, e)
	case VolumeChangedEvent:
		event.Publish(b.dispatcher, e)
	case EntryRemovedEvent:
		event.Publish(b.dispatcher, e)
	case NotificationEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type selects which events it receives. Returns an unsubscribe
// function.
// Usage: unsub := bus.Subscribe(func(e VolumeChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(EntryAddedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(VolumeChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EntryRemovedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NotificationEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
