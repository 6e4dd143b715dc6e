package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/platform/metrics"
)

// Expirer is the part of the booking state machine the sweeper drives.
type Expirer interface {
	ExpiredPending(ctx context.Context, offset, limit int) ([]uuid.UUID, error)
	ExpireBooking(ctx context.Context, id uuid.UUID) error
}

// ExpirySweeper periodically cancels PENDING registrations whose hold has
// run out. Every registration is handled on its own; a failing row is
// logged and picked up again on the next tick.
type ExpirySweeper struct {
	expirer   Expirer
	interval  time.Duration
	batchSize int
	log       zerolog.Logger
}

func NewExpirySweeper(expirer Expirer, interval time.Duration, batchSize int, log zerolog.Logger) (*ExpirySweeper, error) {
	if expirer == nil {
		return nil, ErrNilExpirer
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirySweeper{expirer: expirer, interval: interval, batchSize: batchSize, log: log}, nil
}

// Run sweeps once per interval until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce expires every hold that has run out, fetching batchSize rows at a
// time, and reports how many were cancelled and how many failed. Rows that
// left PENDING in the meantime count as neither. Failed rows stay PENDING and
// keep their place in the listing, so later pages skip past them; they are
// retried first on the next tick.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (expired, failed int) {
	metrics.SweeperRunsTotal.Inc()

	for ctx.Err() == nil {
		ids, err := s.listExpired(ctx, failed)
		if err != nil {
			metrics.SweeperFailuresTotal.Inc()
			s.log.Error().Err(err).Int("offset", failed).Msg("failed to fetch expired bookings")
			break
		}
		if len(ids) == 0 {
			break
		}

		s.log.Info().Int("count", len(ids)).Int("offset", failed).Msg("expiring pending bookings")

		pageExpired, pageFailed := s.expireBatch(ctx, ids)
		expired += pageExpired
		failed += pageFailed

		if len(ids) < s.batchSize || pageExpired+pageFailed == 0 {
			break
		}
	}

	if expired > 0 || failed > 0 {
		s.log.Info().Int("expired", expired).Int("failed", failed).Msg("expiry sweep finished")
	}
	return expired, failed
}

func (s *ExpirySweeper) expireBatch(ctx context.Context, ids []uuid.UUID) (expired, failed int) {
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		err := s.expireOne(ctx, id)
		if err != nil && domain.ClassOf(err) == domain.ClassConflict {
			// Confirmed or cancelled since the listing.
			s.log.Debug().Err(err).Str("booking_id", id.String()).Msg("skipping booking")
			continue
		}
		if err != nil {
			failed++
			metrics.SweeperFailuresTotal.Inc()
			s.log.Warn().Err(err).Str("booking_id", id.String()).Msg("failed to expire booking")
			continue
		}
		expired++
		metrics.SweeperExpiredTotal.Inc()
	}
	return expired, failed
}

func (s *ExpirySweeper) listExpired(ctx context.Context, offset int) (ids []uuid.UUID, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic listing expired bookings: %v", r)
		}
	}()
	return s.expirer.ExpiredPending(ctx, offset, s.batchSize)
}

func (s *ExpirySweeper) expireOne(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic expiring booking: %v", r)
		}
	}()
	return s.expirer.ExpireBooking(ctx, id)
}
