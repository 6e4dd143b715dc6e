package services

import (
	"time"

	"github.com/srgjo27/class_booking/internal/core/domain"
)

type CreateBookingRequest struct {
	TimeSlot      string           `json:"time_slot"`
	Date          string           `json:"date"`
	ClassType     domain.ClassType `json:"class_type"`
	Language      string           `json:"language"`
	Adults        int              `json:"adults"`
	Children      int              `json:"children"`
	Currency      string           `json:"currency"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
	Comments      string           `json:"comments,omitempty"`
}

// PaymentConfirmation carries the external payment correlation fields merged
// into a registration when it is confirmed.
type PaymentConfirmation struct {
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
	PayerID   string `json:"payer_id"`
}

type SessionSummary struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	TimeSlot  string           `json:"time_slot"`
	ClassType domain.ClassType `json:"class_type"`
	Language  string           `json:"language"`
}

type BookingResponse struct {
	BookingID         string          `json:"booking_id"`
	Session           SessionSummary  `json:"session"`
	Adults            int             `json:"adults"`
	Children          int             `json:"children"`
	TotalParticipants int             `json:"total_participants"`
	PriceAdults       int64           `json:"price_adults"`
	PriceChildren     int64           `json:"price_children"`
	TotalPrice        int64           `json:"total_price"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	ExpiresAt         string          `json:"expires_at,omitempty"`
	ConfirmedAt       string          `json:"confirmed_at,omitempty"`
	CancelledAt       string          `json:"cancelled_at,omitempty"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
	Customer          domain.Customer `json:"customer"`
	Payment           *domain.Payment `json:"payment,omitempty"`
}

type SessionStatusResponse struct {
	Date              string           `json:"date"`
	TimeSlot          string           `json:"time_slot"`
	ClassType         domain.ClassType `json:"class_type"`
	Exists            bool             `json:"exists"`
	SessionID         string           `json:"session_id,omitempty"`
	Language          string           `json:"language,omitempty"`
	TotalParticipants int              `json:"total_participants"`
	MinCapacity       int              `json:"min_capacity"`
	MaxCapacity       int              `json:"max_capacity"`
	Remaining         int              `json:"remaining"`
	IsClosed          bool             `json:"is_closed"`
	EarlyCutoff       string           `json:"early_cutoff"`
	FinalCutoff       string           `json:"final_cutoff"`
	NewSessionOpen    bool             `json:"new_session_open"`
	RegistrationOpen  bool             `json:"registration_open"`
}

type OccupancyResponse struct {
	Status        SessionStatusResponse `json:"status"`
	Registrations []BookingResponse     `json:"registrations"`
}

func toBookingResponse(reg *domain.Registration, session *domain.Session) *BookingResponse {
	resp := &BookingResponse{
		BookingID: reg.ID.String(),
		Session: SessionSummary{
			ID:        session.ID.String(),
			Date:      session.Date,
			TimeSlot:  session.TimeSlot,
			ClassType: session.ClassType,
			Language:  session.Language,
		},
		Adults:            reg.Adults,
		Children:          reg.Children,
		TotalParticipants: reg.TotalParticipants,
		PriceAdults:       reg.PriceAdults,
		PriceChildren:     reg.PriceChildren,
		TotalPrice:        reg.TotalPrice,
		Currency:          reg.Currency,
		Status:            string(reg.Status),
		ExpiresAt:         formatTime(reg.ExpiresAt),
		ConfirmedAt:       formatTime(reg.ConfirmedAt),
		CancelledAt:       formatTime(reg.CancelledAt),
		CancelReason:      string(reg.CancelReason),
		Customer:          reg.Customer,
	}
	if reg.Payment != (domain.Payment{}) {
		payment := reg.Payment
		resp.Payment = &payment
	}
	return resp
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
