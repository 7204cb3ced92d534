package payout

import (
	"math"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

const (
	PlatformFeeRate = 0.10
	GSTRate         = 0.18
)

// Figures holds unrounded payout amounts. Round only when presenting.
type Figures struct {
	TotalHours  float64 `json:"total_hours"`
	GrossPayout float64 `json:"gross_payout"`
	PlatformFee float64 `json:"platform_fee"`
	GST         float64 `json:"gst"`
	NetPayable  float64 `json:"net_payable"`
}

func SessionHours(s models.Session) float64 {
	return float64(s.DurationMinutes) / 60
}

// SessionPayout is the single per-session pay formula shared by the
// calculator, receipt snapshots and dashboard rollups.
func SessionPayout(s models.Session) float64 {
	return SessionHours(s) * s.RatePerHour
}

// Calculate sums the payout of the given sessions and applies the platform
// fee and GST, both taken on gross. It has no side effects.
func Calculate(sessions []models.Session) (Figures, error) {
	var figures Figures
	for _, session := range sessions {
		if session.DurationMinutes < 0 {
			return Figures{}, invalidSession(session.ID, "negative duration")
		}
		if session.RatePerHour < 0 || math.IsNaN(session.RatePerHour) || math.IsInf(session.RatePerHour, 0) {
			return Figures{}, invalidSession(session.ID, "rate per hour must be a finite non-negative number")
		}
		figures.TotalHours += SessionHours(session)
		figures.GrossPayout += SessionPayout(session)
	}

	figures.PlatformFee = figures.GrossPayout * PlatformFeeRate
	figures.GST = figures.GrossPayout * GSTRate
	figures.NetPayable = figures.GrossPayout - figures.PlatformFee - figures.GST
	return figures, nil
}

// ValidateSession checks the stored shape of a session before it takes part
// in any arithmetic.
func ValidateSession(s models.Session) error {
	switch {
	case s.MentorID <= 0:
		return invalidSession(s.ID, "missing mentor id")
	case s.DateTime.IsZero():
		return invalidSession(s.ID, "missing date time")
	case s.DurationMinutes <= 0:
		return invalidSession(s.ID, "duration must be greater than 0")
	case s.RatePerHour < 0 || math.IsNaN(s.RatePerHour) || math.IsInf(s.RatePerHour, 0):
		return invalidSession(s.ID, "rate per hour must be a finite non-negative number")
	}

	switch s.Type {
	case models.SessionTypeLive, models.SessionTypeReview, models.SessionTypeEval:
	default:
		return invalidSession(s.ID, "unknown session type "+s.Type)
	}
	switch s.Status {
	case models.SessionStatusScheduled, models.SessionStatusCompleted:
	default:
		return invalidSession(s.ID, "unknown status "+s.Status)
	}
	switch s.ReceiptStatus {
	case models.ReceiptStatusNotGenerated, models.ReceiptStatusGenerated:
	default:
		return invalidSession(s.ID, "unknown receipt status "+s.ReceiptStatus)
	}
	return nil
}

func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Rounded returns a copy of the figures rounded to two decimals.
func (f Figures) Rounded() Figures {
	return Figures{
		TotalHours:  Round2(f.TotalHours),
		GrossPayout: Round2(f.GrossPayout),
		PlatformFee: Round2(f.PlatformFee),
		GST:         Round2(f.GST),
		NetPayable:  Round2(f.NetPayable),
	}
}
