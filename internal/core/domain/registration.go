package domain

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed.
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationConfirmed || s == RegistrationCancelled
}

type CancelReason string

const (
	CancelReasonManual  CancelReason = "MANUAL"
	CancelReasonExpired CancelReason = "EXPIRED"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Payment holds the correlation fields supplied by the external payment
// verification when a registration is confirmed.
type Payment struct {
	Provider  string `json:"provider,omitempty"`
	Reference string `json:"reference,omitempty"`
	PayerID   string `json:"payer_id,omitempty"`
}

// Registration is one customer's booking against a session. Prices are in
// minor units of Currency.
type Registration struct {
	ID                uuid.UUID
	SessionID         uuid.UUID
	Adults            int
	Children          int
	TotalParticipants int
	PriceAdults       int64
	PriceChildren     int64
	TotalPrice        int64
	Currency          string
	Language          string
	Status            RegistrationStatus
	ExpiresAt         *time.Time
	Customer          Customer
	Comments          string
	Payment           Payment
	CancelReason      CancelReason
	CreatedAt         time.Time
	ConfirmedAt       *time.Time
	CancelledAt       *time.Time
}

// HoldsSeats reports whether the registration counts toward its session's occupancy.
func (r *Registration) HoldsSeats() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationConfirmed
}

// IsExpired reports whether a pending hold has passed its deadline at now.
func (r *Registration) IsExpired(now time.Time) bool {
	return r.Status == RegistrationPending && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Confirm moves a pending registration to CONFIRMED.
func (r *Registration) Confirm(payment Payment, now time.Time) error {
	if err := r.requirePending(); err != nil {
		return err
	}

	if payment.Provider != "" {
		r.Payment.Provider = payment.Provider
	}
	if payment.Reference != "" {
		r.Payment.Reference = payment.Reference
	}
	if payment.PayerID != "" {
		r.Payment.PayerID = payment.PayerID
	}

	r.Status = RegistrationConfirmed
	r.ExpiresAt = nil
	r.ConfirmedAt = &now
	return nil
}

// Cancel moves a pending registration to CANCELLED.
func (r *Registration) Cancel(reason CancelReason, now time.Time) error {
	if err := r.requirePending(); err != nil {
		return err
	}

	r.Status = RegistrationCancelled
	r.ExpiresAt = nil
	r.CancelReason = reason
	r.CancelledAt = &now
	return nil
}

func (r *Registration) requirePending() error {
	switch r.Status {
	case RegistrationPending:
		return nil
	case RegistrationConfirmed:
		return ErrAlreadyConfirmed
	case RegistrationCancelled:
		return ErrAlreadyCancelled
	default:
		return ErrInvalidRequest
	}
}
