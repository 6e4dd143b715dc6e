package domain

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Cutoffs are the two registration deadlines of a time slot, as wall-clock
// times on the session's date in the business time zone.
type Cutoffs struct {
	EarlyCutoffTime string
	FinalCutoffTime string

	// offsets from midnight of the session date; negative when a cutoff
	// falls on the previous day
	earlyMinutes int
	finalMinutes int
}

// ParseTimeSlot returns the slot's offset from midnight in minutes.
func ParseTimeSlot(timeSlot string) (int, error) {
	t, err := time.Parse(TimeSlotLayout, timeSlot)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, timeSlot)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ComputeCutoffs subtracts each interval (minutes) from timeSlot.
func ComputeCutoffs(timeSlot string, closeBeforeStart, finalRegistrationClose int) (Cutoffs, error) {
	start, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return Cutoffs{}, err
	}

	early := start - closeBeforeStart
	final := start - finalRegistrationClose

	return Cutoffs{
		EarlyCutoffTime: formatMinutes(early),
		FinalCutoffTime: formatMinutes(final),
		earlyMinutes:    early,
		finalMinutes:    final,
	}, nil
}

// EarlyAt returns the early cutoff as an instant for date in loc.
func (c Cutoffs) EarlyAt(date string, loc *time.Location) (time.Time, error) {
	return atMinutes(date, c.earlyMinutes, loc)
}

// FinalAt returns the final cutoff as an instant for date in loc.
func (c Cutoffs) FinalAt(date string, loc *time.Location) (time.Time, error) {
	return atMinutes(date, c.finalMinutes, loc)
}

// SessionStart returns the wall-clock start of a slot on date in loc.
func SessionStart(date, timeSlot string, loc *time.Location) (time.Time, error) {
	minutes, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return time.Time{}, err
	}
	return atMinutes(date, minutes, loc)
}

func atMinutes(date string, minutes int, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	// time.Date normalises out-of-range minutes across day boundaries
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, loc), nil
}

func formatMinutes(m int) string {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
