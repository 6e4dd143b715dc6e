package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

const sessionColumns = `id, session_date, time_slot, class_type, language, total_participants, is_closed, created_at, updated_at`

const registrationColumns = `id, session_id, adults, children, total_participants, price_adults, price_children, total_price,
	currency, language, status, expires_at, customer_name, customer_email, customer_phone, comments,
	payment_provider, payment_reference, payer_id, cancel_reason, created_at, confirmed_at, cancelled_at`

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

var _ ports.BookingStore = (*BookingRepository)(nil)

func (r *BookingRepository) RunInTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}

func (r *BookingRepository) GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	return getSessionByKey(ctx, r.db, key, "")
}

func (r *BookingRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return getSessionByID(ctx, r.db, id, "")
}

func (r *BookingRepository) ListSessionRegistrations(ctx context.Context, sessionID uuid.UUID) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
	FROM class_registrations
	WHERE session_id = $1
	ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}

	return regs, rows.Err()
}

func (r *BookingRepository) GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	return getRegistration(ctx, r.db, id, "")
}

func (r *BookingRepository) ListExpiredPending(ctx context.Context, now time.Time, offset, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM class_registrations
	WHERE status = 'PENDING' AND expires_at <= $1
	ORDER BY expires_at, id
	OFFSET $2
	LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, now, offset, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// bookingTx locks rows with SELECT ... FOR UPDATE. Session keys that have no
// row yet are serialized with a transaction-scoped advisory lock so two first
// bookings cannot both create the session.
type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) LockSessionByKey(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key.String()); err != nil {
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return getSessionByKey(ctx, t.tx, key, "FOR UPDATE")
}

func (t *bookingTx) LockSessionByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return getSessionByID(ctx, t.tx, id, "FOR UPDATE")
}

func (t *bookingTx) InsertSession(ctx context.Context, s *domain.Session) error {
	query := `
	INSERT INTO class_sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.tx.ExecContext(ctx, query, s.ID, s.Date, s.TimeSlot, s.ClassType, s.Language,
		s.TotalParticipants, s.IsClosed, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (t *bookingTx) UpdateSession(ctx context.Context, s *domain.Session) error {
	query := `
	UPDATE class_sessions
	SET total_participants = $1, is_closed = $2, updated_at = $3
	WHERE id = $4
	`

	result, err := t.tx.ExecContext(ctx, query, s.TotalParticipants, s.IsClosed, s.UpdatedAt, s.ID)
	if err != nil {
		return classify(err)
	}
	return requireOneRow(result, domain.ErrSessionNotFound)
}

func (t *bookingTx) InsertRegistration(ctx context.Context, reg *domain.Registration) error {
	query := `
	INSERT INTO class_registrations (` + registrationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := t.tx.ExecContext(ctx, query,
		reg.ID, reg.SessionID, reg.Adults, reg.Children, reg.TotalParticipants,
		reg.PriceAdults, reg.PriceChildren, reg.TotalPrice, reg.Currency, reg.Language,
		reg.Status, reg.ExpiresAt, reg.Customer.Name, reg.Customer.Email, reg.Customer.Phone,
		reg.Comments, reg.Payment.Provider, reg.Payment.Reference, reg.Payment.PayerID,
		reg.CancelReason, reg.CreatedAt, reg.ConfirmedAt, reg.CancelledAt,
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (t *bookingTx) LockRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	return getRegistration(ctx, t.tx, id, "FOR UPDATE")
}

func (t *bookingTx) UpdateRegistration(ctx context.Context, reg *domain.Registration) error {
	query := `
	UPDATE class_registrations
	SET status = $1, expires_at = $2, payment_provider = $3, payment_reference = $4, payer_id = $5,
		cancel_reason = $6, confirmed_at = $7, cancelled_at = $8
	WHERE id = $9
	`

	result, err := t.tx.ExecContext(ctx, query, reg.Status, reg.ExpiresAt, reg.Payment.Provider,
		reg.Payment.Reference, reg.Payment.PayerID, reg.CancelReason, reg.ConfirmedAt, reg.CancelledAt, reg.ID)
	if err != nil {
		return classify(err)
	}
	return requireOneRow(result, domain.ErrRegistrationNotFound)
}

func getSessionByKey(ctx context.Context, q queryer, key domain.SessionKey, lock string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
	FROM class_sessions
	WHERE session_date = $1 AND time_slot = $2 AND class_type = $3
	` + lock

	return scanSession(q.QueryRowContext(ctx, query, key.Date, key.TimeSlot, key.ClassType))
}

func getSessionByID(ctx context.Context, q queryer, id uuid.UUID, lock string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
	FROM class_sessions
	WHERE id = $1
	` + lock

	return scanSession(q.QueryRowContext(ctx, query, id))
}

func getRegistration(ctx context.Context, q queryer, id uuid.UUID, lock string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
	FROM class_registrations
	WHERE id = $1
	` + lock

	reg, err := scanRegistration(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	return reg, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var s domain.Session
	var date time.Time

	err := row.Scan(&s.ID, &date, &s.TimeSlot, &s.ClassType, &s.Language,
		&s.TotalParticipants, &s.IsClosed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	s.Date = date.Format(domain.DateLayout)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func scanRegistration(row scanner) (*domain.Registration, error) {
	var reg domain.Registration
	var expiresAt, confirmedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&reg.ID, &reg.SessionID, &reg.Adults, &reg.Children, &reg.TotalParticipants,
		&reg.PriceAdults, &reg.PriceChildren, &reg.TotalPrice, &reg.Currency, &reg.Language,
		&reg.Status, &expiresAt, &reg.Customer.Name, &reg.Customer.Email, &reg.Customer.Phone,
		&reg.Comments, &reg.Payment.Provider, &reg.Payment.Reference, &reg.Payment.PayerID,
		&reg.CancelReason, &reg.CreatedAt, &confirmedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	reg.CreatedAt = reg.CreatedAt.UTC()
	reg.ExpiresAt = nullTime(expiresAt)
	reg.ConfirmedAt = nullTime(confirmedAt)
	reg.CancelledAt = nullTime(cancelledAt)
	return &reg, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func requireOneRow(result sql.Result, notFound domain.Reason) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

// classify maps unique violations, serialization failures and deadlocks to
// ErrConcurrentModification. Anything else passes through unchanged.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505", "40001", "40P01": // unique_violation, serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pqErr.Message)
	default:
		return err
	}
}
