package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/services"
)

func parseUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

func parseActor(c *fiber.Ctx) (models.Actor, error) {
	userID, err := parseUserID(c)
	if err != nil {
		return models.Actor{}, err
	}
	role, _ := c.Locals("role").(string)
	return models.Actor{ID: userID, Role: role}, nil
}

func parsePeriod(start, end string, loc *time.Location) (payout.Period, error) {
	periodStart, err := payout.ParsePeriodBound(start, loc, false)
	if err != nil {
		return payout.Period{}, err
	}
	periodEnd, err := payout.ParsePeriodBound(end, loc, true)
	if err != nil {
		return payout.Period{}, err
	}
	return payout.NewPeriod(periodStart, periodEnd)
}

func mapPayoutError(c *fiber.Ctx, err error) error {
	var conflict *payout.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":            "Sessions were receipted by another operation",
			"lost_session_ids": conflict.SessionIDs,
		})
	case errors.Is(err, payout.ErrOverrideConsumed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Override is already applied to a receipt"})
	case errors.Is(err, payout.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Sessions were receipted by another operation"})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, payout.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrReceiptNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not found"})
	case errors.Is(err, payout.ErrNoEligibleSessions):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No eligible sessions in the requested period"})
	case errors.Is(err, payout.ErrInvalidSessionData):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, payout.ErrDataUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Session store unavailable, try again"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"error": "Request cancelled"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payout request"})
	}
}

// roundedReceipt is the presentation copy of a receipt: amounts at two
// decimals, stored values untouched.
func roundedReceipt(receipt models.Receipt) models.Receipt {
	sessions := make([]models.ReceiptSession, 0, len(receipt.Sessions))
	for _, session := range receipt.Sessions {
		session.ComputedPayout = payout.Round2(session.ComputedPayout)
		sessions = append(sessions, session)
	}
	receipt.Sessions = sessions
	receipt.TotalHours = payout.Round2(receipt.TotalHours)
	receipt.GrossPayout = payout.Round2(receipt.GrossPayout)
	receipt.PlatformFee = payout.Round2(receipt.PlatformFee)
	receipt.GST = payout.Round2(receipt.GST)
	receipt.NetPayable = payout.Round2(receipt.NetPayable)
	return receipt
}

func roundedReceipts(receipts []models.Receipt) []models.Receipt {
	result := make([]models.Receipt, 0, len(receipts))
	for _, receipt := range receipts {
		result = append(result, roundedReceipt(receipt))
	}
	return result
}
