package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers of its concrete type.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case DevicesScannedEvent:
		event.Publish(b.dispatcher, e)
	case DevicesInvalidatedEvent:
		event.Publish(b.dispatcher, e)
	case HotplugEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler; the handler's parameter type selects the
// events it receives. Unknown handler types get a no-op unsubscribe.
//
//	unsub := bus.Subscribe(func(e DevicesScannedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DevicesScannedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DevicesInvalidatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HotplugEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel forwards events of type T to ch, dropping them when
// ch is full. It suits select loops such as SSE handlers.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
