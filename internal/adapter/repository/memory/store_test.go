package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(key domain.SessionKey) *domain.Session {
	return &domain.Session{
		ID:        uuid.New(),
		Date:      key.Date,
		TimeSlot:  key.TimeSlot,
		ClassType: key.ClassType,
		Language:  "en",
	}
}

func TestStore_CommitAndRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	key := domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypeNormal}
	sess := newSession(key)

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(tx ports.Tx) error {
		require.NoError(t, tx.InsertSession(ctx, sess))
		got, err := tx.LockSessionByKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetSession(ctx, key)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "rolled back session must not be visible")

	err = store.RunInTx(ctx, func(tx ports.Tx) error {
		return tx.InsertSession(ctx, sess)
	})
	require.NoError(t, err)

	got, err := store.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	err = store.RunInTx(ctx, func(tx ports.Tx) error {
		return tx.InsertSession(ctx, newSession(key))
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	key := domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypeNormal}
	sess := newSession(key)

	require.NoError(t, store.RunInTx(ctx, func(tx ports.Tx) error { return tx.InsertSession(ctx, sess) }))

	sess.TotalParticipants = 99
	got, err := store.GetSessionByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalParticipants)
}

func TestStore_ListExpiredPending(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	key := domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypeNormal}
	sess := newSession(key)
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	regs := []*domain.Registration{
		{ID: uuid.New(), SessionID: sess.ID, Status: domain.RegistrationPending, ExpiresAt: at(-time.Minute)},
		{ID: uuid.New(), SessionID: sess.ID, Status: domain.RegistrationPending, ExpiresAt: at(-2 * time.Minute)},
		{ID: uuid.New(), SessionID: sess.ID, Status: domain.RegistrationPending, ExpiresAt: at(0)},
		{ID: uuid.New(), SessionID: sess.ID, Status: domain.RegistrationPending, ExpiresAt: at(time.Minute)},
		{ID: uuid.New(), SessionID: sess.ID, Status: domain.RegistrationConfirmed},
	}

	require.NoError(t, store.RunInTx(ctx, func(tx ports.Tx) error {
		if err := tx.InsertSession(ctx, sess); err != nil {
			return err
		}
		for _, r := range regs {
			if err := tx.InsertRegistration(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))

	ids, err := store.ListExpiredPending(ctx, now, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{regs[1].ID, regs[0].ID, regs[2].ID}, ids)

	ids, err = store.ListExpiredPending(ctx, now, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{regs[1].ID}, ids)

	ids, err = store.ListExpiredPending(ctx, now, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{regs[0].ID, regs[2].ID}, ids)

	ids, err = store.ListExpiredPending(ctx, now, 3, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)

	listed, err := store.ListSessionRegistrations(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, listed, len(regs))
}

func TestStore_RegistrationNeedsSession(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.RunInTx(ctx, func(tx ports.Tx) error {
		return tx.InsertRegistration(ctx, &domain.Registration{ID: uuid.New(), SessionID: uuid.New()})
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.GetRegistration(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
}

func TestCatalog_Lookups(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.AddLanguage(" EN ")
	catalog.AddSlot(domain.SlotDefinition{ClassType: domain.ClassTypeNormal, StartTime: "10:00"})
	catalog.SetCapacity(domain.CapacityRule{ClassType: domain.ClassTypeNormal, MinCapacity: 1, MaxCapacity: 8})
	catalog.SetPrice(domain.PriceRule{ClassType: domain.ClassTypeNormal, Currency: "USD", Category: domain.CategoryAdult, UnitPrice: 1000})

	ok, err := catalog.LanguageExists(ctx, "en")
	require.NoError(t, err)
	assert.True(t, ok)

	slot, err := catalog.FindStartTime(ctx, "10:00", domain.ClassTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, "10:00", slot.StartTime)

	_, err = catalog.FindStartTime(ctx, "10:00", domain.ClassTypePrivate)
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)

	rule, err := catalog.GetCapacityRule(ctx, domain.ClassTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, 8, rule.MaxCapacity)

	_, err = catalog.GetCapacityRule(ctx, domain.ClassTypePrivate)
	assert.ErrorIs(t, err, domain.ErrCapacityRuleNotFound)

	price, err := catalog.FindPrice(ctx, domain.ClassTypeNormal, "USD", domain.CategoryAdult)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), price)

	_, err = catalog.FindPrice(ctx, domain.ClassTypeNormal, "USD", domain.CategoryChild)
	assert.ErrorIs(t, err, domain.ErrPriceNotFound)
}

func TestStore_ListExpiredPendingBreaksTiesByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	sess := newSession(domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypeNormal})
	expiresAt := time.Date(2030, 1, 1, 7, 0, 0, 0, time.UTC)

	first := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	second := uuid.MustParse("00000000-0000-4000-8000-000000000002")

	require.NoError(t, store.RunInTx(ctx, func(tx ports.Tx) error {
		if err := tx.InsertSession(ctx, sess); err != nil {
			return err
		}
		for _, id := range []uuid.UUID{second, first} {
			exp := expiresAt
			reg := &domain.Registration{ID: id, SessionID: sess.ID, Status: domain.RegistrationPending, ExpiresAt: &exp}
			if err := tx.InsertRegistration(ctx, reg); err != nil {
				return err
			}
		}
		return nil
	}))

	for i := 0; i < 5; i++ {
		ids, err := store.ListExpiredPending(ctx, expiresAt, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, ids)
	}
}
