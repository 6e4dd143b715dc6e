package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *int:
			*p = r.values[i].(int)
		case *int64:
			*p = r.values[i].(int64)
		case *bool:
			*p = r.values[i].(bool)
		case *string:
			*p = r.values[i].(string)
		case *domain.ClassType:
			*p = domain.ClassType(r.values[i].(string))
		case *domain.RegistrationStatus:
			*p = domain.RegistrationStatus(r.values[i].(string))
		case *domain.CancelReason:
			*p = domain.CancelReason(r.values[i].(string))
		case *time.Time:
			*p = r.values[i].(time.Time)
		case *sql.NullTime:
			if t, ok := r.values[i].(time.Time); ok {
				*p = sql.NullTime{Time: t, Valid: true}
			} else {
				*p = sql.NullTime{}
			}
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}

func TestClassify(t *testing.T) {
	for _, code := range []pq.ErrorCode{"23505", "40001", "40P01"} {
		err := classify(&pq.Error{Code: code, Message: "boom"})
		assert.ErrorIs(t, err, domain.ErrConcurrentModification, string(code))
	}

	other := &pq.Error{Code: "23503"}
	assert.Same(t, other, classify(other))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
}

func TestScanSession(t *testing.T) {
	id := uuid.New()
	created := time.Date(2030, 1, 1, 7, 0, 0, 0, time.FixedZone("CET", 3600))

	s, err := scanSession(fakeRow{values: []any{
		id, time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), "10:00", "NORMAL", "en", 3, false, created, created,
	}})
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02", s.Date)
	assert.Equal(t, domain.ClassTypeNormal, s.ClassType)
	assert.Equal(t, 3, s.TotalParticipants)
	assert.Equal(t, time.UTC, s.CreatedAt.Location())

	_, err = scanSession(fakeRow{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestScanRegistration_NullableTimes(t *testing.T) {
	id, sessionID := uuid.New(), uuid.New()
	created := time.Date(2030, 1, 1, 7, 0, 0, 0, time.UTC)
	expires := created.Add(10 * time.Minute)

	reg, err := scanRegistration(fakeRow{values: []any{
		id, sessionID, 2, 1, 3, int64(2000), int64(500), int64(2500),
		"USD", "en", "PENDING", expires, "Ada", "ada@example.com", "+100",
		"", "", "", "", "", created, nil, nil,
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPending, reg.Status)
	require.NotNil(t, reg.ExpiresAt)
	assert.True(t, expires.Equal(*reg.ExpiresAt))
	assert.Nil(t, reg.ConfirmedAt)
	assert.Nil(t, reg.CancelledAt)
	assert.Equal(t, int64(2500), reg.TotalPrice)
}
