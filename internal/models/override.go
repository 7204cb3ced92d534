package models

import "time"

// OverrideAuditEntry records one manual replacement of a net payable figure.
// ReceiptID is set when the override was issued as part of a receipt.
type OverrideAuditEntry struct {
	ID             string    `json:"id"`
	MentorID       *int64    `json:"mentor_id,omitempty"`
	ReceiptID      *string   `json:"receipt_id,omitempty"`
	OriginalAmount float64   `json:"original_amount"`
	NewAmount      float64   `json:"new_amount"`
	Reason         string    `json:"reason"`
	ActingUserID   int64     `json:"acting_user_id"`
	Timestamp      time.Time `json:"timestamp"`
}
