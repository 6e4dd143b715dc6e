package ports

import (
	"context"

	"github.com/srgjo27/class_booking/internal/core/domain"
)

type EventPublisher interface {
	PublishClassConfirmed(ctx context.Context, event domain.ClassConfirmedEvent) error
}

type EventSubscriber interface {
	SubscribeClassConfirmed(ctx context.Context) (Subscription, error)
}

type Subscription interface {
	C() <-chan domain.ClassConfirmedEvent
	Close() error
}
