package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/services"
)

type stubDashboardService struct {
	admin        *models.AdminSummary
	mentor       *models.MentorSummary
	err          error
	lastActor    models.Actor
	lastMentorID int64
}

func (s *stubDashboardService) GetAdminSummary(_ context.Context, actor models.Actor) (*models.AdminSummary, error) {
	s.lastActor = actor
	return s.admin, s.err
}

func (s *stubDashboardService) GetMentorSummary(_ context.Context, actor models.Actor, mentorID int64) (*models.MentorSummary, error) {
	s.lastActor = actor
	s.lastMentorID = mentorID
	return s.mentor, s.err
}

func newDashboardTestApp(handler *DashboardHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/v1/admin/summary", handler.GetAdminSummary)
	app.Get("/v1/mentor/summary", handler.GetOwnSummary)
	app.Get("/v1/mentors/:id/summary", handler.GetMentorSummary)
	return app
}

func TestAdminSummaryRoundsPending(t *testing.T) {
	service := &stubDashboardService{admin: &models.AdminSummary{TotalSessions: 3, TotalMentors: 2, PendingPayouts: 2100.004}}
	app := newDashboardTestApp(NewDashboardHandler(service), "admin", "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/admin/summary", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Summary models.AdminSummary `json:"summary"`
	}
	decodeBody(t, resp, &body)
	if body.Summary.PendingPayouts != 2100 || body.Summary.TotalMentors != 2 {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
}

func TestOwnSummaryUsesCallerID(t *testing.T) {
	service := &stubDashboardService{mentor: &models.MentorSummary{MentorID: 7, TotalSessions: 2, PendingPayments: 1500}}
	app := newDashboardTestApp(NewDashboardHandler(service), "mentor", "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/mentor/summary", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastMentorID != 7 {
		t.Fatalf("expected mentor 7, got %d", service.lastMentorID)
	}
}

func TestMentorSummaryErrors(t *testing.T) {
	service := &stubDashboardService{err: services.ErrForbidden}
	app := newDashboardTestApp(NewDashboardHandler(service), "mentor", "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/mentors/8/summary", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/mentors/zero/summary", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
