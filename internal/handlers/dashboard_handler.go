package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
)

type dashboardApplicationService interface {
	GetAdminSummary(ctx context.Context, actor models.Actor) (*models.AdminSummary, error)
	GetMentorSummary(ctx context.Context, actor models.Actor, mentorID int64) (*models.MentorSummary, error)
}

type DashboardHandler struct {
	service dashboardApplicationService
}

func NewDashboardHandler(service dashboardApplicationService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetAdminSummary(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	summary, err := h.service.GetAdminSummary(c.Context(), actor)
	if err != nil {
		return mapPayoutError(c, err)
	}

	summary.PendingPayouts = payout.Round2(summary.PendingPayouts)
	return c.JSON(fiber.Map{"summary": summary})
}

func (h *DashboardHandler) GetOwnSummary(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return h.mentorSummary(c, actor, actor.ID)
}

func (h *DashboardHandler) GetMentorSummary(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	mentorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || mentorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}
	return h.mentorSummary(c, actor, mentorID)
}

func (h *DashboardHandler) mentorSummary(c *fiber.Ctx, actor models.Actor, mentorID int64) error {
	summary, err := h.service.GetMentorSummary(c.Context(), actor, mentorID)
	if err != nil {
		return mapPayoutError(c, err)
	}

	summary.TotalEarnings = payout.Round2(summary.TotalEarnings)
	summary.PendingPayments = payout.Round2(summary.PendingPayments)
	return c.JSON(fiber.Map{"summary": summary})
}
