package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/config"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/handlers"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/middleware"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/services"
	receiptws "github.com/Kalyaneluri-21/Payout-Automation/internal/websocket"
)

type Dependencies struct {
	Payout    *services.PayoutService
	Dashboard *services.DashboardService
	Hub       *receiptws.Hub
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	payoutHandler := handlers.NewPayoutHandler(deps.Payout, loc)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)

	api := app.Group("/api")

	// Registered ahead of the authenticated group: browsers pass the token
	// as a query parameter here, not a header.
	if deps.Hub != nil {
		eventsHandler := handlers.NewEventsHandler(deps.Hub, cfg.JWTSecret)
		api.Use("/v1/ws", eventsHandler.WebSocketAuth)
		api.Get("/v1/ws", websocket.New(eventsHandler.HandleWebSocket))
	}

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	mentorOnly := middleware.RequireRole(models.RoleMentor)

	payouts := authProtected.Group("/payouts", adminOnly)
	payouts.Post("/calculate", payoutHandler.CalculatePayout)
	payouts.Post("/override", payoutHandler.ApplyOverride)
	payouts.Post("/receipts", payoutHandler.GenerateReceipt)
	payouts.Get("/receipts", payoutHandler.ListReceipts)

	authProtected.Get("/receipts/:id", middleware.RequireRole(models.RoleAdmin, models.RoleMentor), payoutHandler.GetReceipt)

	authProtected.Get("/mentor/receipts", mentorOnly, payoutHandler.ListOwnReceipts)
	authProtected.Get("/mentor/summary", mentorOnly, dashboardHandler.GetOwnSummary)

	authProtected.Get("/mentors/:id/summary", adminOnly, dashboardHandler.GetMentorSummary)
	authProtected.Get("/admin/summary", adminOnly, dashboardHandler.GetAdminSummary)

	return nil
}
