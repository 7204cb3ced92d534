package payout

import (
	"time"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

type ReceiptDraft struct {
	ID        string
	MentorID  int64
	Period    Period
	Sessions  []models.Session
	Figures   Figures
	Override  *Override
	CreatedBy int64
	CreatedAt time.Time
}

// BuildReceipt freezes the contributing sessions into a snapshot. The net
// figure comes from the override when one was applied.
func BuildReceipt(draft ReceiptDraft) *models.Receipt {
	receipt := &models.Receipt{
		ID:          draft.ID,
		MentorID:    draft.MentorID,
		PeriodStart: draft.Period.Start,
		PeriodEnd:   draft.Period.End,
		Sessions:    make([]models.ReceiptSession, 0, len(draft.Sessions)),
		TotalHours:  draft.Figures.TotalHours,
		GrossPayout: draft.Figures.GrossPayout,
		PlatformFee: draft.Figures.PlatformFee,
		GST:         draft.Figures.GST,
		NetPayable:  draft.Figures.NetPayable,
		CreatedBy:   draft.CreatedBy,
		CreatedAt:   draft.CreatedAt.UTC(),
	}

	for _, session := range draft.Sessions {
		if receipt.MentorEmail == "" {
			receipt.MentorEmail = session.MentorEmail
		}
		if receipt.MentorName == "" {
			receipt.MentorName = session.MentorName
		}
		receipt.Sessions = append(receipt.Sessions, models.ReceiptSession{
			SessionID:       session.ID,
			DateTime:        session.DateTime.UTC(),
			DurationMinutes: session.DurationMinutes,
			Type:            session.Type,
			RatePerHour:     session.RatePerHour,
			ComputedPayout:  SessionPayout(session),
		})
	}

	if draft.Override != nil && draft.Override.Overridden {
		reason := draft.Override.OverrideReason
		receipt.NetPayable = draft.Override.NetPayable
		receipt.Overridden = true
		receipt.OverrideReason = &reason
	}
	return receipt
}
