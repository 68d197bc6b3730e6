// Package events provides the publish/subscribe broker that connects the
// selector, viewer and editor of one annotator.
//
// A Broker is owned by exactly one annotator and injected into each
// collaborator. Dispatch is synchronous: FireEvent returns once every
// handler registered for the type has run.
package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"image-annotator/internal/logging"
)

// Publisher fires events. Broker implements it, as does any annotator that
// forwards to its broker.
type Publisher interface {
	FireEvent(t EventType, data interface{}) error
}

// Handler is called when an event of the type it was registered for fires.
type Handler func(data interface{})

// HandlerError reports a handler that panicked during dispatch.
type HandlerError struct {
	Type  EventType
	Index int // position of the handler in registration order
	Value interface{}
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d for %s panicked: %v", e.Index, e.Type, e.Value)
}

// Broker maps event types to ordered handler lists.
//
// Handlers cannot be unregistered. If that is ever needed, AddHandler
// should return a token to remove by.
type Broker struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

var _ Publisher = (*Broker)(nil)

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		handlers: make(map[EventType][]Handler),
	}
}

// AddHandler registers handler for events of type t. The same handler may be
// registered more than once and is then invoked once per registration.
func (b *Broker) AddHandler(t EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], handler)
}

// HandlerCount returns the number of handlers registered for t.
func (b *Broker) HandlerCount(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

// FireEvent invokes every handler registered for t, in registration order.
//
// Handlers registered while the event is being dispatched are not called for
// it. A handler may fire further events; they complete before it resumes.
// A panicking handler does not stop the remaining ones: the panic is logged
// and returned, joined with any others, once dispatch is over.
func (b *Broker) FireEvent(t EventType, data interface{}) error {
	b.mu.RLock()
	handlers := b.handlers[t]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	logging.Logger().Debug("fire event",
		slog.String("event", string(t)),
		slog.Int("handlers", len(handlers)))

	var errs []error
	for i, handler := range handlers {
		if err := invoke(t, i, handler, data); err != nil {
			logging.Logger().Error("event handler panicked",
				slog.String("event", string(t)),
				slog.Int("handler", i),
				slog.Any("panic", err.Value))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func invoke(t EventType, i int, handler Handler, data interface{}) (herr *HandlerError) {
	defer func() {
		if r := recover(); r != nil {
			herr = &HandlerError{Type: t, Index: i, Value: r}
		}
	}()
	handler(data)
	return nil
}
