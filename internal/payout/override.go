package payout

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

type Override struct {
	NetPayable     float64 `json:"net_payable"`
	Overridden     bool    `json:"overridden"`
	OverrideReason string  `json:"override_reason"`
}

// ApplyOverride replaces only the net payable figure. Gross, fee and GST stay
// as calculated so the original computation remains auditable.
func ApplyOverride(currentNet, newAmount float64, reason string, actorID int64, now time.Time) (Override, models.OverrideAuditEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Override{}, models.OverrideAuditEntry{}, fmt.Errorf("%w: override reason is required", ErrValidation)
	}
	if math.IsNaN(currentNet) || math.IsInf(currentNet, 0) {
		return Override{}, models.OverrideAuditEntry{}, fmt.Errorf("%w: current net payable must be finite", ErrValidation)
	}
	if math.IsNaN(newAmount) || math.IsInf(newAmount, 0) || newAmount < 0 {
		return Override{}, models.OverrideAuditEntry{}, fmt.Errorf("%w: new amount must be a finite non-negative number", ErrValidation)
	}

	entry := models.OverrideAuditEntry{
		OriginalAmount: currentNet,
		NewAmount:      newAmount,
		Reason:         reason,
		ActingUserID:   actorID,
		Timestamp:      now.UTC(),
	}
	return Override{
		NetPayable:     newAmount,
		Overridden:     true,
		OverrideReason: reason,
	}, entry, nil
}
