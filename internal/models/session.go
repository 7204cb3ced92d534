package models

import "time"

const (
	SessionTypeLive   = "live"
	SessionTypeReview = "review"
	SessionTypeEval   = "eval"

	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"

	ReceiptStatusNotGenerated = "not_generated"
	ReceiptStatusGenerated    = "generated"
)

type Session struct {
	ID                 int64      `json:"id"`
	MentorID           int64      `json:"mentor_id"`
	MentorEmail        string     `json:"mentor_email"`
	MentorName         string     `json:"mentor_name"`
	DateTime           time.Time  `json:"date_time"`
	Type               string     `json:"type"`
	DurationMinutes    int        `json:"duration_minutes"`
	RatePerHour        float64    `json:"rate_per_hour"`
	Status             string     `json:"status"`
	ReceiptStatus      string     `json:"receipt_status"`
	ReceiptID          *string    `json:"receipt_id,omitempty"`
	ReceiptGeneratedAt *time.Time `json:"receipt_generated_at,omitempty"`
	CalculatedPayout   float64    `json:"calculated_payout"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (s Session) IsReceipted() bool {
	return s.ReceiptStatus == ReceiptStatusGenerated
}
