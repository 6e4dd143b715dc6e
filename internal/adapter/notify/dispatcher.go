package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
	"github.com/srgjo27/class_booking/internal/platform/metrics"
)

// Sink receives confirmed-class notifications, e.g. an email sender.
type Sink interface {
	NotifyClassConfirmed(ctx context.Context, event domain.ClassConfirmedEvent) error
}

// LogSink writes every notification to the log.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) NotifyClassConfirmed(_ context.Context, event domain.ClassConfirmedEvent) error {
	s.log.Info().
		Str("booking_id", event.RegistrationID).
		Str("date", event.Date).
		Str("time_slot", event.TimeSlot).
		Str("class_type", string(event.ClassType)).
		Str("language", event.Language).
		Str("customer_email", event.CustomerEmail).
		Int("participants", event.TotalParticipants).
		Int64("total_price", event.TotalPrice).
		Str("currency", event.Currency).
		Msg("new class confirmed")
	return nil
}

// Dispatcher forwards class.confirmed events from a subscriber to a sink.
// Sink failures are logged and counted; the booking flow never sees them.
type Dispatcher struct {
	subscriber ports.EventSubscriber
	sink       Sink
	log        zerolog.Logger
}

func NewDispatcher(subscriber ports.EventSubscriber, sink Sink, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{subscriber: subscriber, sink: sink, log: log}
}

// Run subscribes and dispatches until ctx is cancelled or the subscription
// ends.
func (d *Dispatcher) Run(ctx context.Context) error {
	sub, err := d.subscriber.SubscribeClassConfirmed(ctx)
	if err != nil {
		return fmt.Errorf("notification dispatcher: %w", err)
	}
	defer sub.Close()

	d.log.Info().Str("topic", domain.TopicClassConfirmed).Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("notification dispatcher stopped")
			return nil
		case event, ok := <-sub.C():
			if !ok {
				d.log.Warn().Msg("notification subscription closed")
				return nil
			}
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event domain.ClassConfirmedEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsDispatchedTotal.WithLabelValues("failure").Inc()
			d.log.Error().Interface("panic", r).Str("booking_id", event.RegistrationID).Msg("notification sink panicked")
		}
	}()

	if err := d.sink.NotifyClassConfirmed(ctx, event); err != nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues("failure").Inc()
		d.log.Error().Err(err).Str("booking_id", event.RegistrationID).Msg("failed to deliver notification")
		return
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues("success").Inc()
}
