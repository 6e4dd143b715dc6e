// Package memory implements in-memory catalog and booking storage for
// development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

// Store is an in-memory BookingStore. Transactions are serialized and their
// writes staged until fn returns without error.
type Store struct {
	txMu sync.Mutex

	mu            sync.RWMutex
	sessions      map[uuid.UUID]*domain.Session
	sessionsByKey map[domain.SessionKey]uuid.UUID
	registrations map[uuid.UUID]*domain.Registration
}

func NewStore() *Store {
	return &Store{
		sessions:      make(map[uuid.UUID]*domain.Session),
		sessionsByKey: make(map[domain.SessionKey]uuid.UUID),
		registrations: make(map[uuid.UUID]*domain.Registration),
	}
}

var _ ports.BookingStore = (*Store)(nil)
var _ ports.Tx = (*tx)(nil)

func (s *Store) RunInTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		store:         s,
		sessions:      make(map[uuid.UUID]*domain.Session),
		registrations: make(map[uuid.UUID]*domain.Registration),
	}
	if err := fn(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range t.sessions {
		s.sessions[id] = sess
		s.sessionsByKey[sess.Key()] = id
	}
	for id, reg := range t.registrations {
		s.registrations[id] = reg
	}
	return nil
}

func (s *Store) GetSession(_ context.Context, key domain.SessionKey) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessionsByKey[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(s.sessions[id]), nil
}

func (s *Store) GetSessionByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (s *Store) ListSessionRegistrations(_ context.Context, sessionID uuid.UUID) ([]domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Registration
	for _, r := range s.registrations {
		if r.SessionID == sessionID {
			out = append(out, *copyRegistration(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetRegistration(_ context.Context, id uuid.UUID) (*domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	return copyRegistration(reg), nil
}

func (s *Store) ListExpiredPending(_ context.Context, now time.Time, offset, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []*domain.Registration
	for _, r := range s.registrations {
		if r.IsExpired(now) {
			expired = append(expired, r)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		a, b := expired[i], expired[j]
		if !a.ExpiresAt.Equal(*b.ExpiresAt) {
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		return a.ID.String() < b.ID.String()
	})

	if offset >= len(expired) {
		return []uuid.UUID{}, nil
	}
	expired = expired[max(offset, 0):]
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]uuid.UUID, 0, len(expired))
	for _, r := range expired {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// tx stages writes on top of the committed state. The store's txMu is held
// for its whole lifetime, so locks are implicit.
type tx struct {
	store         *Store
	sessions      map[uuid.UUID]*domain.Session
	registrations map[uuid.UUID]*domain.Registration
}

func (t *tx) LockSessionByKey(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	for _, sess := range t.sessions {
		if sess.Key() == key {
			return copySession(sess), nil
		}
	}
	return t.store.GetSession(ctx, key)
}

func (t *tx) LockSessionByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if sess, ok := t.sessions[id]; ok {
		return copySession(sess), nil
	}
	return t.store.GetSessionByID(ctx, id)
}

func (t *tx) InsertSession(ctx context.Context, session *domain.Session) error {
	if _, err := t.LockSessionByKey(ctx, session.Key()); err == nil {
		return fmt.Errorf("%w: session %s already exists", domain.ErrConcurrentModification, session.Key())
	}
	t.sessions[session.ID] = copySession(session)
	return nil
}

func (t *tx) UpdateSession(ctx context.Context, session *domain.Session) error {
	if _, err := t.LockSessionByID(ctx, session.ID); err != nil {
		return err
	}
	t.sessions[session.ID] = copySession(session)
	return nil
}

func (t *tx) InsertRegistration(ctx context.Context, reg *domain.Registration) error {
	if _, err := t.LockRegistration(ctx, reg.ID); err == nil {
		return fmt.Errorf("%w: registration %s already exists", domain.ErrConcurrentModification, reg.ID)
	}
	if _, err := t.LockSessionByID(ctx, reg.SessionID); err != nil {
		return fmt.Errorf("registration references unknown session: %w", err)
	}
	t.registrations[reg.ID] = copyRegistration(reg)
	return nil
}

func (t *tx) LockRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	if reg, ok := t.registrations[id]; ok {
		return copyRegistration(reg), nil
	}
	return t.store.GetRegistration(ctx, id)
}

func (t *tx) UpdateRegistration(ctx context.Context, reg *domain.Registration) error {
	if _, err := t.LockRegistration(ctx, reg.ID); err != nil {
		return err
	}
	t.registrations[reg.ID] = copyRegistration(reg)
	return nil
}

func copySession(s *domain.Session) *domain.Session {
	c := *s
	return &c
}

func copyRegistration(r *domain.Registration) *domain.Registration {
	c := *r
	c.ExpiresAt = copyTime(r.ExpiresAt)
	c.ConfirmedAt = copyTime(r.ConfirmedAt)
	c.CancelledAt = copyTime(r.CancelledAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
