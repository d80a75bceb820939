// Package eventbus delivers domain events relayed from the outbox to
// in-process subscribers.
//
// Delivery is synchronous: Publish returns the joined errors of every handler
// so the outbox relay can retry the message. Because the relay is
// at-least-once, the bus drops event IDs it has already delivered
// successfully within a bounded window.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

const defaultDedupeWindow = 1024

var _ ports.EventPublisher = (*Bus)(nil)

// Handler reacts to a single event.
type Handler func(ctx context.Context, event order.Event) error

// Option customizes Bus construction.
type Option func(*Bus)

// WithDedupeWindow controls how many delivered event IDs are remembered.
func WithDedupeWindow(size int) Option {
	return func(b *Bus) {
		if size > 0 {
			b.dedupeWindow = size
		}
	}
}

// WithLogger sets the logger used for duplicate and failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type subscription struct {
	name    string
	handler Handler
}

type Bus struct {
	mu           sync.RWMutex
	handlers     map[string][]subscription
	recentIDs    map[string]struct{}
	recentOrder  []string
	dedupeWindow int
	logger       *slog.Logger
}

func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:     map[string][]subscription{},
		recentIDs:    map[string]struct{}{},
		dedupeWindow: defaultDedupeWindow,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.logger = b.logger.With("component", "eventbus")
	b.recentOrder = make([]string, 0, b.dedupeWindow)
	return b
}

// Subscribe registers handler for eventName under a unique subscriber name.
// Registering the same name twice for one event replaces the earlier handler.
func (b *Bus) Subscribe(eventName, name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventName]
	for i := range subs {
		if subs[i].name == name {
			subs[i].handler = handler
			return
		}
	}
	subs = append(subs, subscription{name: name, handler: handler})
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].name < subs[j].name })
	b.handlers[eventName] = subs
}

// Subscribers lists subscriber names for eventName in delivery order.
func (b *Bus) Subscribers(eventName string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.handlers[eventName]))
	for _, s := range b.handlers[eventName] {
		names = append(names, s.name)
	}
	return names
}

// Publish runs every subscriber of the event. All subscribers run even when
// one fails; a failed event is not remembered so a retry reaches everyone.
func (b *Bus) Publish(ctx context.Context, event order.Event) error {
	if event == nil {
		return errors.New("eventbus: nil event")
	}

	id := event.EventID().String()
	if b.seen(id) {
		b.logger.DebugContext(ctx, "duplicate event skipped", "event_id", id, "event", event.EventName())
		return nil
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	var failures []error
	for _, s := range subs {
		if err := b.invoke(ctx, s, event); err != nil {
			failures = append(failures, fmt.Errorf("subscriber %s: %w", s.name, err))
		}
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	b.remember(id)
	return nil
}

func (b *Bus) invoke(ctx context.Context, s subscription, event order.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.handler(ctx, event)
}

func (b *Bus) seen(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.recentIDs[id]
	return ok
}

func (b *Bus) remember(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.recentIDs[id]; ok {
		return
	}
	b.recentIDs[id] = struct{}{}
	b.recentOrder = append(b.recentOrder, id)
	if len(b.recentOrder) > b.dedupeWindow {
		oldest := b.recentOrder[0]
		b.recentOrder = b.recentOrder[1:]
		delete(b.recentIDs, oldest)
	}
}
