package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
	"github.com/srgjo27/class_booking/internal/platform/metrics"
)

// CapacityLedger is the only writer of a session's participant counter and
// closed flag. Reserve, Release and Close must run inside a store
// transaction that holds the session lock.
type CapacityLedger struct {
	store ports.BookingStore
	log   zerolog.Logger
}

func NewCapacityLedger(store ports.BookingStore, log zerolog.Logger) *CapacityLedger {
	return &CapacityLedger{store: store, log: log}
}

// Occupancy returns the session for key and the registrations holding seats
// in it. With requireExisting unset, a key nobody booked yet yields an empty
// occupancy instead of ErrSessionNotFound.
func (l *CapacityLedger) Occupancy(ctx context.Context, key domain.SessionKey, requireExisting bool) (*domain.Occupancy, error) {
	occ := &domain.Occupancy{Key: key, Registrations: []domain.Registration{}}

	session, err := l.store.GetSession(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) && !requireExisting {
			return occ, nil
		}
		return nil, err
	}

	regs, err := l.store.ListSessionRegistrations(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations of session %s: %w", session.ID, err)
	}

	occ.Session = session
	occ.TotalParticipants = session.TotalParticipants
	for _, r := range regs {
		if r.HoldsSeats() {
			occ.Registrations = append(occ.Registrations, r)
		}
	}
	return occ, nil
}

// Admit checks whether incoming participants fit into session under rule
// without changing anything. isNew marks a session that does not exist yet.
//
// While the counter is non-negative the capacity check already rejects any
// party larger than MaxCapacity, so ErrPartyTooLarge only surfaces on a
// counter that has gone negative.
func (l *CapacityLedger) Admit(session *domain.Session, isNew bool, incoming int, rule domain.CapacityRule) error {
	if incoming < 1 {
		return fmt.Errorf("%w: party size must be at least 1", domain.ErrInvalidParticipants)
	}
	if session.IsClosed {
		return domain.ErrSessionClosed
	}
	if session.TotalParticipants+incoming > rule.MaxCapacity {
		return fmt.Errorf("%w: %d booked + %d requested > %d",
			domain.ErrCapacityExceeded, session.TotalParticipants, incoming, rule.MaxCapacity)
	}
	if isNew && incoming < rule.MinCapacity {
		return fmt.Errorf("%w: a new session needs at least %d participants, got %d",
			domain.ErrBelowMinimumForNewSession, rule.MinCapacity, incoming)
	}
	if incoming > rule.MaxCapacity {
		return fmt.Errorf("%w: %d > %d", domain.ErrPartyTooLarge, incoming, rule.MaxCapacity)
	}
	return nil
}

// Reserve admits incoming participants and persists the new counter,
// inserting the session when isNew is set. Admission is all-or-nothing.
func (l *CapacityLedger) Reserve(ctx context.Context, tx ports.Tx, session *domain.Session, isNew bool, incoming int, rule domain.CapacityRule, now time.Time) error {
	if err := l.Admit(session, isNew, incoming, rule); err != nil {
		return err
	}

	session.TotalParticipants += incoming
	session.UpdatedAt = now

	if isNew {
		session.CreatedAt = now
		if err := tx.InsertSession(ctx, session); err != nil {
			return fmt.Errorf("insert session %s: %w", session.Key(), err)
		}
	} else if err := tx.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("update session %s: %w", session.Key(), err)
	}

	metrics.ParticipantsReservedTotal.WithLabelValues(string(session.ClassType)).Add(float64(incoming))
	return nil
}

// Release gives participants back to session. The counter is clamped at zero;
// going below it means the ledger and the registrations disagree.
func (l *CapacityLedger) Release(ctx context.Context, tx ports.Tx, session *domain.Session, participants int, now time.Time) error {
	if participants < 0 {
		return fmt.Errorf("%w: cannot release %d participants", domain.ErrInvalidParticipants, participants)
	}

	remaining := session.TotalParticipants - participants
	if remaining < 0 {
		metrics.CapacityInvariantViolationsTotal.Inc()
		l.log.Error().
			Str("session_id", session.ID.String()).
			Str("session", session.Key().String()).
			Int("total_participants", session.TotalParticipants).
			Int("released", participants).
			Msg("capacity invariant violated: release exceeds occupancy, clamping to zero")
		remaining = 0
	}

	released := session.TotalParticipants - remaining
	session.TotalParticipants = remaining
	session.UpdatedAt = now

	if err := tx.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("update session %s: %w", session.Key(), err)
	}

	metrics.ParticipantsReleasedTotal.WithLabelValues(string(session.ClassType)).Add(float64(released))
	return nil
}

// Close stops session from accepting registrations. Closing twice is a no-op.
func (l *CapacityLedger) Close(ctx context.Context, tx ports.Tx, session *domain.Session, now time.Time) error {
	if session.IsClosed {
		return nil
	}

	session.IsClosed = true
	session.UpdatedAt = now
	if err := tx.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("close session %s: %w", session.Key(), err)
	}
	return nil
}
