package domain

import "errors"

// Reason is a stable, client-facing rejection code. Every error the booking
// core returns on purpose is one of the constants below, possibly wrapped
// with extra detail via fmt.Errorf("%w: ...").
type Reason string

// Error implements the error interface
func (r Reason) Error() string {
	return string(r)
}

// Validation errors
const (
	ErrInvalidRequest      Reason = "invalid_request"
	ErrInvalidDate         Reason = "invalid_date"
	ErrInvalidTimeSlot     Reason = "invalid_time_slot"
	ErrInvalidClassType    Reason = "invalid_class_type"
	ErrInvalidCurrency     Reason = "invalid_currency"
	ErrInvalidParticipants Reason = "invalid_participants"
	ErrInvalidCustomer     Reason = "invalid_customer"
	ErrUnknownLanguage     Reason = "unknown_language"
)

// Lookup errors
const (
	ErrSlotNotFound         Reason = "slot_not_found"
	ErrPriceNotFound        Reason = "price_not_found"
	ErrCapacityRuleNotFound Reason = "capacity_rule_not_found"
	ErrSessionNotFound      Reason = "session_not_found"
	ErrRegistrationNotFound Reason = "registration_not_found"
)

// Business-rule violations
const (
	ErrRetroactiveBooking        Reason = "retroactive_booking"
	ErrWindowClosedForNewSession Reason = "window_closed_for_new_session"
	ErrRegistrationClosed        Reason = "registration_closed"
	ErrLanguageMismatch          Reason = "language_mismatch"
	ErrSessionClosed             Reason = "session_closed"
	ErrCapacityExceeded          Reason = "capacity_exceeded"
	ErrBelowMinimumForNewSession Reason = "below_minimum_for_new_session"
	ErrPartyTooLarge             Reason = "party_too_large"
)

// Conflicts
const (
	ErrAlreadyConfirmed       Reason = "already_confirmed"
	ErrAlreadyCancelled       Reason = "already_cancelled"
	ErrNotExpired             Reason = "not_expired"
	ErrConcurrentModification Reason = "concurrent_modification"
)

// ErrInvalidConfiguration marks rule tables or settings that break their own
// invariants. It is reported as an infrastructure failure.
const ErrInvalidConfiguration Reason = "invalid_configuration"

// ErrorClass groups reasons by how a caller is expected to react.
type ErrorClass string

const (
	ClassValidation     ErrorClass = "validation"
	ClassNotFound       ErrorClass = "not_found"
	ClassBusinessRule   ErrorClass = "business_rule"
	ClassConflict       ErrorClass = "conflict"
	ClassInfrastructure ErrorClass = "infrastructure"
)

// ClassOf classifies err. Anything that is not a Reason is infrastructure.
func ClassOf(err error) ErrorClass {
	var reason Reason
	if !errors.As(err, &reason) {
		return ClassInfrastructure
	}

	switch reason {
	case ErrInvalidRequest, ErrInvalidDate, ErrInvalidTimeSlot, ErrInvalidClassType,
		ErrInvalidCurrency, ErrInvalidParticipants, ErrInvalidCustomer, ErrUnknownLanguage:
		return ClassValidation
	case ErrSlotNotFound, ErrPriceNotFound, ErrCapacityRuleNotFound,
		ErrSessionNotFound, ErrRegistrationNotFound:
		return ClassNotFound
	case ErrRetroactiveBooking, ErrWindowClosedForNewSession, ErrRegistrationClosed,
		ErrLanguageMismatch, ErrSessionClosed, ErrCapacityExceeded,
		ErrBelowMinimumForNewSession, ErrPartyTooLarge:
		return ClassBusinessRule
	case ErrAlreadyConfirmed, ErrAlreadyCancelled, ErrNotExpired, ErrConcurrentModification:
		return ClassConflict
	default:
		return ClassInfrastructure
	}
}

// ReasonOf extracts the Reason carried by err, or "" for infrastructure errors.
func ReasonOf(err error) Reason {
	var reason Reason
	if errors.As(err, &reason) {
		return reason
	}
	return ""
}
