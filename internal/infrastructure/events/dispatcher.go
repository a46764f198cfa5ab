package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/metrics"
)

// Handler reacts to one domain event
type Handler func(ctx context.Context, event entities.DomainEvent) error

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithMetrics counts dispatched events by name and outcome
func WithMetrics(m *metrics.BrokerMetrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher fans a domain event out to its subscribers in registration order.
// Every handler runs even when an earlier one fails; the failures are joined.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	global   []Handler
	metrics  *metrics.BrokerMetrics
}

// NewDispatcher creates a dispatcher with no subscribers
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string][]Handler)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers h for events named eventName
func (d *Dispatcher) Subscribe(eventName string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], h)
}

// SubscribeAll registers h for every event
func (d *Dispatcher) SubscribeAll(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.global = append(d.global, h)
}

// Dispatch delivers event to the handlers subscribed to its name, then to the
// catch-all handlers
func (d *Dispatcher) Dispatch(ctx context.Context, event entities.DomainEvent) error {
	if event == nil {
		return nil
	}

	d.mu.RLock()
	named := d.handlers[event.EventName()]
	handlers := make([]Handler, 0, len(named)+len(d.global))
	handlers = append(handlers, named...)
	handlers = append(handlers, d.global...)
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := safeCall(ctx, h, event); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	d.observe(event.EventName(), err)
	return err
}

func (d *Dispatcher) observe(name string, err error) {
	if d.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	d.metrics.EventsDispatched.WithLabelValues(name, outcome).Inc()
}

func safeCall(ctx context.Context, h Handler, event entities.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic on %s: %v", event.EventName(), r)
		}
	}()
	return h(ctx, event)
}
