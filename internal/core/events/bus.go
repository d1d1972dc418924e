package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is anything the bus can route. The concrete document-lifecycle
// events live in document_events.go; subscribers assert to the concrete
// type to read the payload.
type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
}

// Handler consumes one event. Handlers run on bus goroutines; an error or
// panic is logged and never reaches the operation that raised the event, so
// a failed notification fan-out cannot undo a recorded movement.
type Handler func(ctx context.Context, event Event) error

// EventBus connects document operations to their side effects, notification
// rows and websocket pushes mostly. One instance lives for the whole server
// process.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type. Registration happens at
// startup; subscribing after events are flowing is safe but those handlers
// only see later events.
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Info("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

// Publish fans the event out to every subscriber of its type, each on its
// own goroutine. It never blocks on handlers and never returns their
// failures; a movement or upload must not wait on its notifications.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.subscribers(event.EventType())
	if len(handlers) == 0 {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil
	}

	eb.logger.Info("publishing event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"handlers_count", len(handlers))

	for _, handler := range handlers {
		go eb.dispatch(ctx, handler, event)
	}

	return nil
}

func (eb *EventBus) subscribers(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.handlers[eventType]
}

// dispatch shields the bus from a misbehaving subscriber. A panicking
// notification handler must not take the server down.
func (eb *EventBus) dispatch(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"panic", r)
		}
	}()

	if err := handler(ctx, event); err != nil {
		eb.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
}
