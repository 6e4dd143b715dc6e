package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
	"github.com/srgjo27/class_booking/internal/platform/clock"
	"github.com/srgjo27/class_booking/internal/platform/metrics"
)

// Config holds the dependencies and settings of a BookingService.
type Config struct {
	Store   ports.BookingStore
	Catalog ports.CatalogRepository

	// Cache and Publisher are optional.
	Cache     ports.OccupancyCache
	Publisher ports.EventPublisher

	Clock  clock.Clock
	Logger zerolog.Logger

	// Location is the business time zone every cutoff is evaluated in.
	Location     *time.Location
	Window       domain.RegistrationWindow
	HoldDuration time.Duration
}

// BookingService owns the registration lifecycle: PENDING on creation, then
// CONFIRMED after external payment or CANCELLED by hand or on hold expiry.
type BookingService struct {
	store     ports.BookingStore
	catalog   ports.CatalogRepository
	cache     ports.OccupancyCache
	publisher ports.EventPublisher
	ledger    *CapacityLedger
	pricing   *PriceCatalog
	clock     clock.Clock
	log       zerolog.Logger
	loc       *time.Location
	window    domain.RegistrationWindow
	hold      time.Duration
}

func NewBookingService(cfg *Config) (*BookingService, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	if cfg.Catalog == nil {
		return nil, ErrNilCatalog
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.Location == nil {
		return nil, ErrNilLocation
	}
	if cfg.HoldDuration <= 0 {
		return nil, ErrInvalidHoldDuration
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}

	return &BookingService{
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		ledger:    NewCapacityLedger(cfg.Store, cfg.Logger),
		pricing:   NewPriceCatalog(cfg.Catalog),
		clock:     cfg.Clock,
		log:       cfg.Logger,
		loc:       cfg.Location,
		window:    cfg.Window,
		hold:      cfg.HoldDuration,
	}, nil
}

// CreateBooking places a PENDING hold for the requested party. The session is
// created by the first booking for its key; capacity check, session write and
// registration insert commit together or not at all.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (resp *BookingResponse, err error) {
	defer func() { record("create", err) }()

	key, err := s.validateCreate(ctx, &req)
	if err != nil {
		return nil, err
	}

	slot, err := s.findSlot(ctx, key)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	if key.Date < now.Format(domain.DateLayout) {
		return nil, fmt.Errorf("%w: %s is before %s", domain.ErrRetroactiveBooking, key.Date, now.Format(domain.DateLayout))
	}

	earlyAt, finalAt, _, err := s.cutoffs(key.Date, slot.StartTime)
	if err != nil {
		return nil, err
	}

	rule, err := s.capacityRule(ctx, key.ClassType)
	if err != nil {
		return nil, err
	}

	// Pricing is read before the transaction to keep lookups out of the lock,
	// but a missing price is only reported once capacity has been admitted.
	totals, priceErr := s.pricing.ComputeTotals(ctx, key.ClassType, req.Currency, req.Adults, req.Children)
	if priceErr != nil && domain.ClassOf(priceErr) == domain.ClassInfrastructure {
		return nil, priceErr
	}

	incoming := req.Adults + req.Children
	var reg *domain.Registration
	var session *domain.Session

	err = s.store.RunInTx(ctx, func(tx ports.Tx) error {
		current, isNew, err := s.lockOrNewSession(ctx, tx, key, req.Language)
		if err != nil {
			return err
		}

		if isNew && !now.Before(earlyAt) {
			return fmt.Errorf("%w: new sessions for %s close at %s",
				domain.ErrWindowClosedForNewSession, key.TimeSlot, earlyAt.Format(domain.TimeSlotLayout))
		}
		if !now.Before(finalAt) {
			return fmt.Errorf("%w: registration for %s closed at %s",
				domain.ErrRegistrationClosed, key.TimeSlot, finalAt.Format(domain.TimeSlotLayout))
		}
		if !isNew && current.Language != req.Language {
			return fmt.Errorf("%w: session runs in %q, requested %q",
				domain.ErrLanguageMismatch, current.Language, req.Language)
		}

		if err := s.ledger.Reserve(ctx, tx, current, isNew, incoming, *rule, now.UTC()); err != nil {
			return err
		}
		if priceErr != nil {
			return priceErr
		}

		expiresAt := now.Add(s.hold).UTC()
		reg = &domain.Registration{
			ID:                uuid.New(),
			SessionID:         current.ID,
			Adults:            req.Adults,
			Children:          req.Children,
			TotalParticipants: incoming,
			PriceAdults:       totals.PriceAdults,
			PriceChildren:     totals.PriceChildren,
			TotalPrice:        totals.TotalPrice,
			Currency:          req.Currency,
			Language:          req.Language,
			Status:            domain.RegistrationPending,
			ExpiresAt:         &expiresAt,
			Customer: domain.Customer{
				Name:  req.CustomerName,
				Email: req.CustomerEmail,
				Phone: req.CustomerPhone,
			},
			Comments:  req.Comments,
			CreatedAt: now.UTC(),
		}
		if err := tx.InsertRegistration(ctx, reg); err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}

		session = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, key)
	s.log.Info().
		Str("booking_id", reg.ID.String()).
		Str("session", key.String()).
		Int("participants", incoming).
		Int("session_total", session.TotalParticipants).
		Time("expires_at", *reg.ExpiresAt).
		Msg("booking created")

	return toBookingResponse(reg, session), nil
}

// ConfirmBooking marks a PENDING registration as paid and announces it on
// the event bus. Confirming twice is reported as ErrAlreadyConfirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string, payment PaymentConfirmation) (resp *BookingResponse, err error) {
	defer func() { record("confirm", err) }()

	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	var reg *domain.Registration
	var session *domain.Session

	err = s.store.RunInTx(ctx, func(tx ports.Tx) error {
		locked, err := tx.LockRegistration(ctx, id)
		if err != nil {
			return err
		}

		if err := locked.Confirm(domain.Payment{
			Provider:  strings.TrimSpace(payment.Provider),
			Reference: strings.TrimSpace(payment.Reference),
			PayerID:   strings.TrimSpace(payment.PayerID),
		}, now); err != nil {
			return err
		}

		sess, err := tx.LockSessionByID(ctx, locked.SessionID)
		if err != nil {
			return fmt.Errorf("load session %s: %w", locked.SessionID, err)
		}

		if err := tx.UpdateRegistration(ctx, locked); err != nil {
			return fmt.Errorf("update registration: %w", err)
		}

		reg, session = locked, sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("booking_id", reg.ID.String()).
		Str("session", session.Key().String()).
		Str("payment_reference", reg.Payment.Reference).
		Msg("booking confirmed")

	s.publishConfirmed(ctx, domain.NewClassConfirmedEvent(reg, session))
	return toBookingResponse(reg, session), nil
}

// CancelBooking cancels a PENDING registration and releases its seats.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (resp *BookingResponse, err error) {
	defer func() { record("cancel", err) }()

	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, id, domain.CancelReasonManual)
}

// ExpireBooking cancels a registration whose hold deadline has passed. It
// fails with ErrNotExpired if the hold is still running.
func (s *BookingService) ExpireBooking(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { record("expire", err) }()

	_, err = s.cancel(ctx, id, domain.CancelReasonExpired)
	return err
}

// ExpiredPending pages through PENDING registrations whose hold ended by now.
func (s *BookingService) ExpiredPending(ctx context.Context, offset, limit int) ([]uuid.UUID, error) {
	return s.store.ListExpiredPending(ctx, s.clock.Now().UTC(), offset, limit)
}

func (s *BookingService) cancel(ctx context.Context, id uuid.UUID, reason domain.CancelReason) (*BookingResponse, error) {
	now := s.clock.Now().UTC()
	var reg *domain.Registration
	var session *domain.Session

	err := s.store.RunInTx(ctx, func(tx ports.Tx) error {
		locked, err := tx.LockRegistration(ctx, id)
		if err != nil {
			return err
		}

		if reason == domain.CancelReasonExpired && locked.Status == domain.RegistrationPending && !locked.IsExpired(now) {
			return fmt.Errorf("%w: hold of %s runs until %s", domain.ErrNotExpired, id, formatTime(locked.ExpiresAt))
		}
		if err := locked.Cancel(reason, now); err != nil {
			return err
		}

		sess, err := tx.LockSessionByID(ctx, locked.SessionID)
		if err != nil {
			return fmt.Errorf("lock session %s: %w", locked.SessionID, err)
		}
		if err := s.ledger.Release(ctx, tx, sess, locked.TotalParticipants, now); err != nil {
			return err
		}

		if err := tx.UpdateRegistration(ctx, locked); err != nil {
			return fmt.Errorf("update registration: %w", err)
		}

		reg, session = locked, sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, session.Key())
	s.log.Info().
		Str("booking_id", reg.ID.String()).
		Str("session", session.Key().String()).
		Str("reason", string(reason)).
		Int("released", reg.TotalParticipants).
		Int("session_total", session.TotalParticipants).
		Msg("booking cancelled")

	return toBookingResponse(reg, session), nil
}

// GetBooking returns a registration with its session.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*BookingResponse, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByID(ctx, reg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", reg.SessionID, err)
	}

	return toBookingResponse(reg, session), nil
}

// CloseSession stops a session from accepting any further registration.
func (s *BookingService) CloseSession(ctx context.Context, key domain.SessionKey) (resp *SessionStatusResponse, err error) {
	defer func() { record("close", err) }()

	if err := key.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	err = s.store.RunInTx(ctx, func(tx ports.Tx) error {
		session, err := tx.LockSessionByKey(ctx, key)
		if err != nil {
			return err
		}
		return s.ledger.Close(ctx, tx, session, now)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, key)
	s.log.Info().Str("session", key.String()).Msg("session closed")

	return s.SessionStatus(ctx, key)
}

// SessionStatus reports occupancy and whether the session still accepts
// registrations, taking cutoffs, the closed flag and capacity into account.
func (s *BookingService) SessionStatus(ctx context.Context, key domain.SessionKey) (*SessionStatusResponse, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	slot, err := s.findSlot(ctx, key)
	if err != nil {
		return nil, err
	}

	rule, err := s.capacityRule(ctx, key.ClassType)
	if err != nil {
		return nil, err
	}

	earlyAt, finalAt, cutoffs, err := s.cutoffs(key.Date, slot.StartTime)
	if err != nil {
		return nil, err
	}

	session, err := s.readSession(ctx, key)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	open := key.Date >= now.Format(domain.DateLayout) && now.Before(finalAt)

	status := &SessionStatusResponse{
		Date:        key.Date,
		TimeSlot:    key.TimeSlot,
		ClassType:   key.ClassType,
		MinCapacity: rule.MinCapacity,
		MaxCapacity: rule.MaxCapacity,
		Remaining:   rule.MaxCapacity,
		EarlyCutoff: cutoffs.EarlyCutoffTime,
		FinalCutoff: cutoffs.FinalCutoffTime,
	}

	if session == nil {
		status.NewSessionOpen = open && now.Before(earlyAt)
		status.RegistrationOpen = status.NewSessionOpen
		return status, nil
	}

	status.Exists = true
	status.SessionID = session.ID.String()
	status.Language = session.Language
	status.TotalParticipants = session.TotalParticipants
	status.IsClosed = session.IsClosed
	status.Remaining = max(rule.MaxCapacity-session.TotalParticipants, 0)
	status.RegistrationOpen = open && !session.IsClosed && status.Remaining > 0
	return status, nil
}

// SessionOccupancy returns the status of an existing session together with
// the registrations currently holding seats in it.
func (s *BookingService) SessionOccupancy(ctx context.Context, key domain.SessionKey) (*OccupancyResponse, error) {
	status, err := s.SessionStatus(ctx, key)
	if err != nil {
		return nil, err
	}

	occ, err := s.ledger.Occupancy(ctx, key, true)
	if err != nil {
		return nil, err
	}

	resp := &OccupancyResponse{Status: *status, Registrations: make([]BookingResponse, 0, len(occ.Registrations))}
	for i := range occ.Registrations {
		resp.Registrations = append(resp.Registrations, *toBookingResponse(&occ.Registrations[i], occ.Session))
	}
	return resp, nil
}

func (s *BookingService) validateCreate(ctx context.Context, req *CreateBookingRequest) (domain.SessionKey, error) {
	req.Date = strings.TrimSpace(req.Date)
	req.TimeSlot = strings.TrimSpace(req.TimeSlot)
	req.ClassType = domain.ClassType(strings.ToUpper(strings.TrimSpace(string(req.ClassType))))
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.Comments = strings.TrimSpace(req.Comments)

	key := domain.SessionKey{Date: req.Date, TimeSlot: req.TimeSlot, ClassType: req.ClassType}
	if err := key.Validate(); err != nil {
		return key, err
	}

	if req.Adults < 0 || req.Children < 0 || req.Adults+req.Children < 1 {
		return key, fmt.Errorf("%w: adults=%d children=%d", domain.ErrInvalidParticipants, req.Adults, req.Children)
	}
	if !domain.ValidCurrency(req.Currency) {
		return key, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, req.Currency)
	}
	if req.CustomerName == "" {
		return key, fmt.Errorf("%w: customer_name is required", domain.ErrInvalidCustomer)
	}
	if !isValidEmail(req.CustomerEmail) {
		return key, fmt.Errorf("%w: customer_email is not a valid email address", domain.ErrInvalidCustomer)
	}
	if req.CustomerPhone == "" {
		return key, fmt.Errorf("%w: customer_phone is required", domain.ErrInvalidCustomer)
	}
	if req.Language == "" {
		return key, fmt.Errorf("%w: language is required", domain.ErrUnknownLanguage)
	}

	known, err := s.catalog.LanguageExists(ctx, req.Language)
	if err != nil {
		return key, fmt.Errorf("look up language: %w", err)
	}
	if !known {
		return key, fmt.Errorf("%w: %q", domain.ErrUnknownLanguage, req.Language)
	}
	return key, nil
}

func (s *BookingService) findSlot(ctx context.Context, key domain.SessionKey) (*domain.SlotDefinition, error) {
	slot, err := s.catalog.FindStartTime(ctx, key.TimeSlot, key.ClassType)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrSlotNotFound, key.ClassType, key.TimeSlot)
		}
		return nil, fmt.Errorf("find start time: %w", err)
	}
	return slot, nil
}

func (s *BookingService) capacityRule(ctx context.Context, classType domain.ClassType) (*domain.CapacityRule, error) {
	rule, err := s.catalog.GetCapacityRule(ctx, classType)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityRuleNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCapacityRuleNotFound, classType)
		}
		return nil, fmt.Errorf("get capacity rule: %w", err)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *BookingService) cutoffs(date, startTime string) (time.Time, time.Time, domain.Cutoffs, error) {
	cutoffs, err := domain.ComputeCutoffs(startTime, s.window.CloseBeforeStart, s.window.FinalRegistrationClose)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Cutoffs{}, err
	}
	earlyAt, err := cutoffs.EarlyAt(date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Cutoffs{}, err
	}
	finalAt, err := cutoffs.FinalAt(date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Cutoffs{}, err
	}
	return earlyAt, finalAt, cutoffs, nil
}

func (s *BookingService) lockOrNewSession(ctx context.Context, tx ports.Tx, key domain.SessionKey, language string) (*domain.Session, bool, error) {
	session, err := tx.LockSessionByKey(ctx, key)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("lock session %s: %w", key, err)
	}

	return &domain.Session{
		ID:        uuid.New(),
		Date:      key.Date,
		TimeSlot:  key.TimeSlot,
		ClassType: key.ClassType,
		Language:  language,
	}, true, nil
}

func (s *BookingService) readSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	generation := int64(-1)
	if s.cache != nil {
		cached, gen, ok := s.cache.GetSession(ctx, key)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	session, err := s.store.GetSession(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.FillSession(ctx, session, generation); err != nil {
			s.log.Warn().Err(err).Str("session", key.String()).Msg("failed to cache session")
		}
	}
	return session, nil
}

func (s *BookingService) invalidate(ctx context.Context, key domain.SessionKey) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("session", key.String()).Msg("failed to invalidate session cache")
	}
}

func (s *BookingService) publishConfirmed(ctx context.Context, event domain.ClassConfirmedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishClassConfirmed(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(domain.TopicClassConfirmed, "failure").Inc()
		s.log.Error().Err(err).
			Str("booking_id", event.RegistrationID).
			Msg("failed to publish class.confirmed event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(domain.TopicClassConfirmed, "success").Inc()
}

func parseBookingID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid booking id %q", domain.ErrInvalidRequest, raw)
	}
	return id, nil
}

func record(operation string, err error) {
	if err == nil {
		metrics.RecordOutcome(operation, "")
		return
	}
	if reason := domain.ReasonOf(err); reason != "" {
		metrics.RecordOutcome(operation, string(reason))
		return
	}
	metrics.RecordOutcome(operation, "error")
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
