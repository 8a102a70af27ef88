package events

import (
	"context"
	"sync"

	"dealership_crm_backend/platform/logger"
)

// InMemoryBus is a Bus implementation backed by an in-process handler
// registry. Handlers for the same event run sequentially; Publish
// detaches delivery onto a goroutine so publishers never block.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

var _ Bus = (*InMemoryBus)(nil)

func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	// Detach from the request context so in-flight handlers survive
	// the originating request completing.
	go b.deliver(context.WithoutCancel(ctx), event)
}

func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) {
	b.deliver(ctx, event)
}

func (b *InMemoryBus) deliver(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panic",
						"event", event.EventName(),
						"panic", r,
					)
				}
			}()
			if err := handler.Handle(ctx, event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(),
					"error", err,
				)
			}
		}()
	}
}
