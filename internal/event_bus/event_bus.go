package event_bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType identifies a kind of event on the bus.
type EventType string

// Event is the envelope delivered to subscribers. The context carries the
// request scope of the publisher, including the current user.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscription struct {
	id uint64
	h  func(Event) error
}

// EventBus dispatches events to subscribers synchronously, in subscription
// order, during Publish.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[EventType][]subscription)}
}

// Subscribe registers a handler for eventType and returns a function that
// removes it again.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	eb.subs[eventType] = append(eb.subs[eventType], subscription{id: id, h: h})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		subs := eb.subs[eventType]
		for i, sub := range subs {
			if sub.id == id {
				eb.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(eb.subs[eventType]) == 0 {
			delete(eb.subs, eventType)
		}
	}
}

// SubscribeTyped registers a handler that only fires when the payload is a T.
// A free function because methods cannot introduce type parameters.
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(ctx context.Context, data T) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("event bus: payload for %s is %T, handler expects %T", eventType, e.Data, *new(T))
			return nil
		}
		return h(e.Context(), payload)
	})
}

// Publish delivers the event to every subscriber of its type. Handler errors
// and panics do not stop delivery; they are collected and returned together.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s: %w", e.Type, err)
	}

	eb.mu.RLock()
	subs := make([]subscription, len(eb.subs[e.Type]))
	copy(subs, eb.subs[e.Type])
	eb.mu.RUnlock()

	var failures []error
	for _, sub := range subs {
		if err := e.Context().Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if err := runHandler(sub, e); err != nil {
			log.Errorf("event bus: handler %d failed for %s: %v", sub.id, e.Type, err)
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %v", e.Type, len(failures), failures)
	}
	return nil
}

func runHandler(sub subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked: %v", sub.id, r)
		}
	}()
	return sub.h(e)
}
