package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/class_booking/internal/core/domain"
)

// CatalogRepository is the read-only view of the schedule, price, capacity
// and language tables.
type CatalogRepository interface {
	FindStartTime(ctx context.Context, timeSlot string, classType domain.ClassType) (*domain.SlotDefinition, error)
	FindPrice(ctx context.Context, classType domain.ClassType, currency string, category domain.ParticipantCategory) (int64, error)
	GetCapacityRule(ctx context.Context, classType domain.ClassType) (*domain.CapacityRule, error)
	LanguageExists(ctx context.Context, code string) (bool, error)
}

type BookingStore interface {
	// RunInTx runs fn in a single transaction. Any error returned by fn rolls
	// every write back.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error)
	GetSessionByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ListSessionRegistrations(ctx context.Context, sessionID uuid.UUID) ([]domain.Registration, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error)
	// ListExpiredPending pages through PENDING registrations whose hold ended
	// by now, ordered by expiry and then ID.
	ListExpiredPending(ctx context.Context, now time.Time, offset, limit int) ([]uuid.UUID, error)
}

// Tx is the transactional view used by the booking flow. Lock* methods hold
// the row (or, for a key with no session yet, the key itself) until the
// transaction ends.
type Tx interface {
	LockSessionByKey(ctx context.Context, key domain.SessionKey) (*domain.Session, error)
	LockSessionByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	InsertSession(ctx context.Context, session *domain.Session) error
	UpdateSession(ctx context.Context, session *domain.Session) error

	InsertRegistration(ctx context.Context, reg *domain.Registration) error
	LockRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error)
	UpdateRegistration(ctx context.Context, reg *domain.Registration) error
}

// OccupancyCache keeps read-side snapshots of sessions. It is never consulted
// by the booking flow itself.
type OccupancyCache interface {
	// GetSession returns the cached snapshot. On a miss it also returns the
	// generation a following FillSession for the same key must present.
	GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, int64, bool)
	// FillSession stores session unless its key was invalidated after
	// generation was read.
	FillSession(ctx context.Context, session *domain.Session, generation int64) error
	Invalidate(ctx context.Context, key domain.SessionKey) error
}
