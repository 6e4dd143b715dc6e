package domain

import (
	"fmt"
	"regexp"
)

// MaxWindowMinutes bounds both registration window intervals.
const MaxWindowMinutes = 300

type ParticipantCategory string

const (
	CategoryAdult ParticipantCategory = "ADULT"
	CategoryChild ParticipantCategory = "CHILD"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency reports whether code looks like an ISO 4217 code.
func ValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// SlotDefinition is a configured start time for a class type.
type SlotDefinition struct {
	ClassType ClassType
	StartTime string
}

type CapacityRule struct {
	ClassType   ClassType
	MinCapacity int
	MaxCapacity int
}

func (r CapacityRule) Validate() error {
	if r.MinCapacity < 1 || r.MaxCapacity < r.MinCapacity {
		return fmt.Errorf("%w: capacity for %s must satisfy 1 <= min (%d) <= max (%d)",
			ErrInvalidConfiguration, r.ClassType, r.MinCapacity, r.MaxCapacity)
	}
	return nil
}

type PriceRule struct {
	ClassType ClassType
	Currency  string
	Category  ParticipantCategory
	UnitPrice int64
}

// PriceTotals are the computed prices of one registration in minor units.
type PriceTotals struct {
	PriceAdults   int64
	PriceChildren int64
	TotalPrice    int64
}

// RegistrationWindow holds the two cutoff intervals, in minutes before the
// session start. CloseBeforeStart stops new sessions from being opened,
// FinalRegistrationClose stops every registration.
type RegistrationWindow struct {
	CloseBeforeStart       int `yaml:"close_before_start_minutes"`
	FinalRegistrationClose int `yaml:"final_registration_close_minutes"`
}

// Validate rejects windows where the final cutoff would come before the
// early one, since joiners would then be turned away earlier than new sessions.
func (w RegistrationWindow) Validate() error {
	if w.CloseBeforeStart < 0 || w.CloseBeforeStart > MaxWindowMinutes {
		return fmt.Errorf("%w: close_before_start_minutes must be within [0, %d], got %d",
			ErrInvalidConfiguration, MaxWindowMinutes, w.CloseBeforeStart)
	}
	if w.FinalRegistrationClose < 0 || w.FinalRegistrationClose > MaxWindowMinutes {
		return fmt.Errorf("%w: final_registration_close_minutes must be within [0, %d], got %d",
			ErrInvalidConfiguration, MaxWindowMinutes, w.FinalRegistrationClose)
	}
	if w.FinalRegistrationClose > w.CloseBeforeStart {
		return fmt.Errorf("%w: final_registration_close_minutes (%d) exceeds close_before_start_minutes (%d)",
			ErrInvalidConfiguration, w.FinalRegistrationClose, w.CloseBeforeStart)
	}
	return nil
}
