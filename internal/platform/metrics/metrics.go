package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "class_booking_outcomes_total",
		Help: "Booking state machine operations by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=ok|<reason code>|error

	ParticipantsReservedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "class_booking_participants_reserved_total",
		Help: "Participants admitted into sessions",
	}, []string{"class_type"})

	ParticipantsReleasedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "class_booking_participants_released_total",
		Help: "Participants released from sessions by cancellation or expiry",
	}, []string{"class_type"})

	CapacityInvariantViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "class_booking_capacity_invariant_violations_total",
		Help: "Releases that would have driven a session counter below zero",
	})

	SweeperRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "class_booking_sweeper_runs_total",
		Help: "Expiry sweeper ticks",
	})

	SweeperExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "class_booking_sweeper_expired_total",
		Help: "Pending registrations cancelled by the expiry sweeper",
	})

	SweeperFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "class_booking_sweeper_failures_total",
		Help: "Per-registration failures during expiry sweeps",
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "class_booking_events_published_total",
		Help: "Domain events handed to the event bus by outcome",
	}, []string{"topic", "outcome"}) // outcome=success|failure

	NotificationsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "class_booking_notifications_dispatched_total",
		Help: "Events forwarded to notification sinks by outcome",
	}, []string{"outcome"})
)

// RecordOutcome counts one booking operation. reason is empty on success.
func RecordOutcome(operation, reason string) {
	outcome := reason
	if outcome == "" {
		outcome = "ok"
	}
	BookingOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}
