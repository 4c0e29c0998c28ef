package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supporthub/support-dashboard/internal/api/http/handlers"
	"github.com/supporthub/support-dashboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Knowledge      *handlers.KnowledgeHandler
	Analytics      *handlers.AnalyticsHandler
	Functions      *handlers.FunctionsHandler
	Realtime       *handlers.RealtimeHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Get("/metrics", cfg.Health.Metrics)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/suggestion", cfg.Tickets.Suggest)

	knowledge := protected.Group("/knowledge")
	knowledge.Get("/", cfg.Knowledge.ListArticles)
	knowledge.Post("/", cfg.Knowledge.CreateArticle)
	knowledge.Get("/:id", cfg.Knowledge.GetArticle)

	protected.Get("/analytics", cfg.Analytics.Report)
	protected.Post("/functions/:name", cfg.Functions.Invoke)
	protected.Get("/realtime", cfg.Realtime.Stream)
}
