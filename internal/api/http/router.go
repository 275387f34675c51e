package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/atlasdesk/support-service/internal/api/http/handlers"
	"github.com/atlasdesk/support-service/internal/auth"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	TicketTypes     *handlers.TicketTypesHandler
	Interventions   *handlers.InterventionsHandler
	Activities      *handlers.ActivitiesHandler
	Public          *handlers.PublicHandler
	Tokens          *auth.TokenManager
	Redis           *persistence.Redis
	PublicPerMinute int
	Logger          *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	public := app.Group("/public", PublicRateLimiter(cfg.Redis, cfg.PublicPerMinute, cfg.Logger))
	public.Get("/ticket-types", cfg.Public.Types)
	public.Post("/tickets", cfg.Public.Create)
	public.Get("/tickets/:code", cfg.Public.Get)
	public.Post("/tickets/:code/close", cfg.Public.Close)
	public.Post("/tickets/:code/reopen", cfg.Public.Reopen)
	public.Post("/tickets/:code/rate", cfg.Public.Rate)
	public.Get("/tickets/:code/interventions", cfg.Public.Interventions)
	public.Get("/tickets/:code/comments", cfg.Public.Comments)

	api := app.Group("/api", auth.Middleware(cfg.Tokens))

	view := api.Group("", auth.RequirePermission(auth.PermSupportView))
	view.Get("/tickets", cfg.Tickets.List)
	view.Get("/tickets/:id", cfg.Tickets.Get)
	view.Get("/tickets/:id/activities", cfg.Activities.Timeline)
	view.Get("/tickets/:id/comments", cfg.Activities.Comments)
	view.Get("/tickets/:id/cost", cfg.Interventions.TicketCost)
	view.Get("/ticket-types", cfg.TicketTypes.List)
	view.Get("/ticket-types/:id", cfg.TicketTypes.Get)
	view.Get("/interventions", cfg.Interventions.List)
	view.Get("/interventions/:id", cfg.Interventions.Get)
	view.Get("/dashboard/stats", cfg.Tickets.Dashboard)
	view.Get("/interventions-stats", cfg.Interventions.Stats)
	view.Get("/activities/stats", cfg.Activities.Stats)

	create := api.Group("", auth.RequirePermission(auth.PermSupportCreate))
	create.Post("/tickets", cfg.Tickets.Create)
	create.Patch("/tickets/:id", cfg.Tickets.Update)
	create.Post("/tickets/:id/close", cfg.Tickets.Close)
	create.Post("/tickets/:id/reopen", cfg.Tickets.Reopen)
	create.Post("/tickets/:id/comments", cfg.Tickets.Comment)
	create.Post("/tickets/:id/rate", cfg.Tickets.Rate)

	intervene := api.Group("", auth.RequirePermission(auth.PermSupportIntervene))
	intervene.Post("/interventions", cfg.Interventions.Create)
	intervene.Patch("/interventions/:id", cfg.Interventions.Update)
	intervene.Post("/interventions/:id/costs", cfg.Interventions.AddCost)
	intervene.Delete("/interventions/:id", cfg.Interventions.Delete)

	manage := api.Group("", auth.RequirePermission(auth.PermSupportManage))
	manage.Delete("/tickets/:id", cfg.Tickets.Delete)
	manage.Post("/ticket-types", cfg.TicketTypes.Create)
	manage.Put("/ticket-types/:id", cfg.TicketTypes.Update)
	manage.Delete("/ticket-types/:id", cfg.TicketTypes.Delete)
	manage.Delete("/activities/:id", cfg.Activities.Delete)
}
