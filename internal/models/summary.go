package models

type AdminSummary struct {
	TotalSessions  int     `json:"total_sessions"`
	TotalMentors   int     `json:"total_mentors"`
	PendingPayouts float64 `json:"pending_payouts"`
}

type MentorSummary struct {
	MentorID        int64   `json:"mentor_id"`
	TotalSessions   int     `json:"total_sessions"`
	TotalEarnings   float64 `json:"total_earnings"`
	PendingPayments float64 `json:"pending_payments"`
}
