package models

import "time"

// ReceiptSession is a frozen copy of a session at the moment it was receipted.
// It never follows later edits of the originating session.
type ReceiptSession struct {
	SessionID       int64     `json:"session_id"`
	DateTime        time.Time `json:"date_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	RatePerHour     float64   `json:"rate_per_hour"`
	ComputedPayout  float64   `json:"computed_payout"`
}

type Receipt struct {
	ID             string           `json:"id"`
	MentorID       int64            `json:"mentor_id"`
	MentorEmail    string           `json:"mentor_email"`
	MentorName     string           `json:"mentor_name"`
	PeriodStart    time.Time        `json:"period_start"`
	PeriodEnd      time.Time        `json:"period_end"`
	Sessions       []ReceiptSession `json:"session_list"`
	TotalHours     float64          `json:"total_hours"`
	GrossPayout    float64          `json:"gross_payout"`
	PlatformFee    float64          `json:"platform_fee"`
	GST            float64          `json:"gst"`
	NetPayable     float64          `json:"net_payable"`
	Overridden     bool             `json:"overridden"`
	OverrideReason *string          `json:"override_reason,omitempty"`
	CreatedBy      int64            `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (r *Receipt) SessionIDs() []int64 {
	ids := make([]int64, 0, len(r.Sessions))
	for _, session := range r.Sessions {
		ids = append(ids, session.SessionID)
	}
	return ids
}
