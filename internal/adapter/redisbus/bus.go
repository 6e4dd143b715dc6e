// Package redisbus carries domain events over Redis pub/sub.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

type Bus struct {
	client *redis.Client
	log    zerolog.Logger
}

var (
	_ ports.EventPublisher  = (*Bus)(nil)
	_ ports.EventSubscriber = (*Bus)(nil)
)

func New(client *redis.Client, log zerolog.Logger) *Bus {
	return &Bus{client: client, log: log}
}

func (b *Bus) PublishClassConfirmed(ctx context.Context, event domain.ClassConfirmedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", domain.TopicClassConfirmed, err)
	}
	if err := b.client.Publish(ctx, domain.TopicClassConfirmed, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", domain.TopicClassConfirmed, err)
	}
	return nil
}

// SubscribeClassConfirmed waits for the subscription to be acknowledged so
// that events published after it returns are not missed.
func (b *Bus) SubscribeClassConfirmed(ctx context.Context) (ports.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, domain.TopicClassConfirmed)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", domain.TopicClassConfirmed, err)
	}

	sub := &subscription{
		pubsub:  pubsub,
		out:     make(chan domain.ClassConfirmedEvent, 64),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
		log:     b.log,
	}
	go sub.pump()
	return sub, nil
}

type subscription struct {
	pubsub  *redis.PubSub
	out     chan domain.ClassConfirmedEvent
	done    chan struct{}
	closing chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

func (s *subscription) C() <-chan domain.ClassConfirmedEvent {
	return s.out
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closing)
		err = s.pubsub.Close()
		<-s.done
	})
	return err
}

func (s *subscription) pump() {
	defer close(s.done)
	defer close(s.out)

	for msg := range s.pubsub.Channel() {
		var event domain.ClassConfirmedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			s.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping undecodable event")
			continue
		}
		select {
		case s.out <- event:
		case <-s.closing:
			return
		}
	}
}
