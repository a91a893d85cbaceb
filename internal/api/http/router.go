package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/updesk/helpdesk/internal/api/http/handlers"
	"github.com/updesk/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Triage         *handlers.TriageHandler
	Messages       *handlers.MessagesHandler
	Telegram       *handlers.TelegramHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Telegram calls the webhook directly; it carries no bearer token.
	app.Post("/telegram/webhook", cfg.Telegram.Webhook)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/propose", cfg.Tickets.Propose)
	tickets.Post("/confirm", cfg.Tickets.Confirm)
	tickets.Post("/resolved-by-ai", cfg.Tickets.ResolveByAI)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/claim", cfg.Tickets.Claim)
	tickets.Post("/:id/transfer", cfg.Tickets.Transfer)
	tickets.Post("/:id/return-to-triage", cfg.Tickets.ReturnToTriage)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Get("/:id/messages", cfg.Messages.ListMessages)
	tickets.Post("/:id/messages", cfg.Messages.AddMessage)

	triage := app.Group("/triage", cfg.AuthMiddleware.Handle)
	triage.Get("/tickets", cfg.Triage.ListQueue)
}
