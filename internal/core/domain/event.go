package domain

// TopicClassConfirmed is published once per registration that reaches CONFIRMED.
const TopicClassConfirmed = "class.confirmed"

// ClassConfirmedEvent is the payload consumed by the notification dispatcher.
type ClassConfirmedEvent struct {
	RegistrationID    string    `json:"registration_id"`
	Date              string    `json:"date"`
	TimeSlot          string    `json:"time_slot"`
	ClassType         ClassType `json:"class_type"`
	Language          string    `json:"language"`
	CustomerName      string    `json:"customer_name"`
	CustomerEmail     string    `json:"customer_email"`
	TotalParticipants int       `json:"total_participants"`
	TotalPrice        int64     `json:"total_price"`
	Currency          string    `json:"currency"`
}

// NewClassConfirmedEvent summarises a confirmed registration and its session.
func NewClassConfirmedEvent(reg *Registration, session *Session) ClassConfirmedEvent {
	return ClassConfirmedEvent{
		RegistrationID:    reg.ID.String(),
		Date:              session.Date,
		TimeSlot:          session.TimeSlot,
		ClassType:         session.ClassType,
		Language:          session.Language,
		CustomerName:      reg.Customer.Name,
		CustomerEmail:     reg.Customer.Email,
		TotalParticipants: reg.TotalParticipants,
		TotalPrice:        reg.TotalPrice,
		Currency:          reg.Currency,
	}
}
