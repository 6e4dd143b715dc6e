// Package notify delivers class.confirmed events to notification sinks.
package notify

import (
	"context"
	"sync"

	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

// MemoryBus is an in-process pub/sub for single-instance deployments and
// tests. Delivery is best-effort: a full subscriber buffer drops the event.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memorySubscription]struct{}
}

var (
	_ ports.EventPublisher  = (*MemoryBus)(nil)
	_ ports.EventSubscriber = (*MemoryBus)(nil)
)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memorySubscription]struct{})}
}

func (b *MemoryBus) PublishClassConfirmed(_ context.Context, event domain.ClassConfirmedEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			// drop on backpressure to avoid blocking the booking flow
		}
	}
	return nil
}

func (b *MemoryBus) SubscribeClassConfirmed(_ context.Context) (ports.Subscription, error) {
	sub := &memorySubscription{bus: b, ch: make(chan domain.ClassConfirmedEvent, 64)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub, nil
}

type memorySubscription struct {
	bus  *MemoryBus
	ch   chan domain.ClassConfirmedEvent
	once sync.Once
}

func (s *memorySubscription) C() <-chan domain.ClassConfirmedEvent {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
	return nil
}
