package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout     = "2006-01-02"
	TimeSlotLayout = "15:04"
)

type ClassType string

const (
	ClassTypeNormal  ClassType = "NORMAL"
	ClassTypePrivate ClassType = "PRIVATE"
)

func (c ClassType) IsValid() bool {
	return c == ClassTypeNormal || c == ClassTypePrivate
}

// SessionKey identifies one bookable occasion. Date is a business-local
// calendar day (YYYY-MM-DD), TimeSlot a wall-clock start (HH:mm).
type SessionKey struct {
	Date      string
	TimeSlot  string
	ClassType ClassType
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Date, k.TimeSlot, k.ClassType)
}

// Validate checks the key's formats.
func (k SessionKey) Validate() error {
	if _, err := time.Parse(DateLayout, k.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, k.Date)
	}
	if _, err := ParseTimeSlot(k.TimeSlot); err != nil {
		return err
	}
	if !k.ClassType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidClassType, k.ClassType)
	}
	return nil
}

// Session is created by the first registration for a key and shared by every
// later one. TotalParticipants counts PENDING and CONFIRMED registrations.
type Session struct {
	ID                uuid.UUID `json:"id"`
	Date              string    `json:"date"`
	TimeSlot          string    `json:"time_slot"`
	ClassType         ClassType `json:"class_type"`
	Language          string    `json:"language"`
	TotalParticipants int       `json:"total_participants"`
	IsClosed          bool      `json:"is_closed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *Session) Key() SessionKey {
	return SessionKey{Date: s.Date, TimeSlot: s.TimeSlot, ClassType: s.ClassType}
}

// Occupancy is a session together with the registrations holding seats in it.
// Session is nil when nobody has booked the key yet.
type Occupancy struct {
	Key               SessionKey
	Session           *Session
	TotalParticipants int
	Registrations     []Registration
}
