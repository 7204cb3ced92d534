package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/services"
)

type payoutApplicationService interface {
	CalculatePayout(ctx context.Context, actor models.Actor, input services.CalculatePayoutInput) (*services.PayoutCalculation, error)
	ApplyOverride(ctx context.Context, actor models.Actor, input services.OverrideInput) (*services.OverrideResult, error)
	GenerateReceipt(ctx context.Context, actor models.Actor, input services.GenerateReceiptInput) (*models.Receipt, error)
	ListReceipts(ctx context.Context, actor models.Actor, mentorID *int64, limit, offset int) ([]models.Receipt, int, error)
	GetReceipt(ctx context.Context, actor models.Actor, receiptID string) (*models.Receipt, error)
}

type PayoutHandler struct {
	service  payoutApplicationService
	location *time.Location
}

// NewPayoutHandler reads plain YYYY-MM-DD period bounds in loc.
func NewPayoutHandler(service payoutApplicationService, loc *time.Location) *PayoutHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PayoutHandler{service: service, location: loc}
}

type calculatePayoutRequest struct {
	MentorID    int64  `json:"mentor_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

type overrideRequest struct {
	MentorID   *int64   `json:"mentor_id"`
	CurrentNet *float64 `json:"current_net"`
	NewAmount  *float64 `json:"new_amount"`
	Reason     string   `json:"reason"`
}

// receiptOverrideRequest either references an override recorded through
// POST /payouts/override by audit_id or carries the amount and reason inline.
type receiptOverrideRequest struct {
	AuditID   string   `json:"audit_id"`
	NewAmount *float64 `json:"new_amount"`
	Reason    string   `json:"reason"`
}

type generateReceiptRequest struct {
	MentorID    int64                   `json:"mentor_id"`
	PeriodStart string                  `json:"period_start"`
	PeriodEnd   string                  `json:"period_end"`
	Override    *receiptOverrideRequest `json:"override"`
}

type eligibleSessionResponse struct {
	ID              int64     `json:"id"`
	DateTime        time.Time `json:"date_time"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	RatePerHour     float64   `json:"rate_per_hour"`
	Payout          float64   `json:"payout"`
}

type calculationResponse struct {
	MentorID                   int64                     `json:"mentor_id"`
	PeriodStart                time.Time                 `json:"period_start"`
	PeriodEnd                  time.Time                 `json:"period_end"`
	GrossPayout                float64                   `json:"gross_payout"`
	PlatformFee                float64                   `json:"platform_fee"`
	GST                        float64                   `json:"gst"`
	NetPayable                 float64                   `json:"net_payable"`
	TotalHours                 float64                   `json:"total_hours"`
	EligibleSessions           []eligibleSessionResponse `json:"eligible_sessions"`
	AlreadyReceiptedSessionIDs []int64                   `json:"already_receipted_session_ids"`
	InvalidSessionIDs          []int64                   `json:"invalid_session_ids"`
}

func (h *PayoutHandler) CalculatePayout(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req calculatePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MentorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mentor_id is required"})
	}
	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd, h.location)
	if err != nil {
		return mapPayoutError(c, err)
	}

	calculation, err := h.service.CalculatePayout(c.Context(), actor, services.CalculatePayoutInput{
		MentorID: req.MentorID,
		Period:   period,
	})
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{"payout": newCalculationResponse(calculation)})
}

func (h *PayoutHandler) ApplyOverride(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req overrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.CurrentNet == nil || req.NewAmount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "current_net and new_amount are required"})
	}

	result, err := h.service.ApplyOverride(c.Context(), actor, services.OverrideInput{
		MentorID:   req.MentorID,
		CurrentNet: *req.CurrentNet,
		NewAmount:  *req.NewAmount,
		Reason:     req.Reason,
	})
	if err != nil {
		return mapPayoutError(c, err)
	}

	override := result.Override
	override.NetPayable = payout.Round2(override.NetPayable)
	return c.JSON(fiber.Map{"override": override, "audit_id": result.AuditID})
}

func (h *PayoutHandler) GenerateReceipt(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req generateReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MentorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mentor_id is required"})
	}
	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd, h.location)
	if err != nil {
		return mapPayoutError(c, err)
	}

	input := services.GenerateReceiptInput{MentorID: req.MentorID, Period: period}
	if req.Override != nil {
		auditID := strings.TrimSpace(req.Override.AuditID)
		switch {
		case auditID != "":
			if req.Override.NewAmount != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "override.audit_id and override.new_amount are exclusive"})
			}
			input.Override = &services.ReceiptOverride{AuditID: auditID}
		case req.Override.NewAmount == nil:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "override.new_amount or override.audit_id is required"})
		default:
			input.Override = &services.ReceiptOverride{
				NewAmount: *req.Override.NewAmount,
				Reason:    req.Override.Reason,
			}
		}
	}

	receipt, err := h.service.GenerateReceipt(c.Context(), actor, input)
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"receipt": roundedReceipt(*receipt)})
}

func (h *PayoutHandler) ListReceipts(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var mentorID *int64
	if raw := strings.TrimSpace(c.Query("mentor_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
		}
		mentorID = &parsed
	}

	return h.receiptPage(c, actor, mentorID)
}

func (h *PayoutHandler) ListOwnReceipts(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	return h.receiptPage(c, actor, &actor.ID)
}

func (h *PayoutHandler) receiptPage(c *fiber.Ctx, actor models.Actor, mentorID *int64) error {
	page, limit := parsePage(c)
	receipts, total, err := h.service.ListReceipts(c.Context(), actor, mentorID, limit, pageOffset(page, limit))
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{
		"receipts":   roundedReceipts(receipts),
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *PayoutHandler) GetReceipt(c *fiber.Ctx) error {
	actor, err := parseActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	receiptID := strings.TrimSpace(c.Params("id"))
	if receiptID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid receipt id"})
	}

	receipt, err := h.service.GetReceipt(c.Context(), actor, receiptID)
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{"receipt": roundedReceipt(*receipt)})
}

func newCalculationResponse(calculation *services.PayoutCalculation) calculationResponse {
	figures := calculation.Figures.Rounded()
	response := calculationResponse{
		MentorID:                   calculation.MentorID,
		PeriodStart:                calculation.Period.Start,
		PeriodEnd:                  calculation.Period.End,
		GrossPayout:                figures.GrossPayout,
		PlatformFee:                figures.PlatformFee,
		GST:                        figures.GST,
		NetPayable:                 figures.NetPayable,
		TotalHours:                 figures.TotalHours,
		EligibleSessions:           make([]eligibleSessionResponse, 0, len(calculation.EligibleSessions)),
		AlreadyReceiptedSessionIDs: calculation.AlreadyReceipted,
		InvalidSessionIDs:          make([]int64, 0, len(calculation.InvalidSessions)),
	}
	if response.AlreadyReceiptedSessionIDs == nil {
		response.AlreadyReceiptedSessionIDs = []int64{}
	}
	for _, session := range calculation.EligibleSessions {
		response.EligibleSessions = append(response.EligibleSessions, eligibleSessionResponse{
			ID:              session.ID,
			DateTime:        session.DateTime,
			Type:            session.Type,
			DurationMinutes: session.DurationMinutes,
			RatePerHour:     session.RatePerHour,
			Payout:          payout.Round2(payout.SessionPayout(session)),
		})
	}
	for _, invalid := range calculation.InvalidSessions {
		response.InvalidSessionIDs = append(response.InvalidSessionIDs, invalid.SessionID)
	}
	return response
}
