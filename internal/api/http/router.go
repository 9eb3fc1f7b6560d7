package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	ServiceRoot string
	Health      *handlers.HealthHandler
	Tickets     *handlers.TicketsHandler
	Content     *handlers.ContentHandler
	Directory   *handlers.DirectoryHandler
	Dashboard   *handlers.DashboardHandler
	Performer   *auth.PerformerMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	root := app.Group(cfg.ServiceRoot)

	health := root.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	api := root.Group("", cfg.Performer.Handle)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/overdue", cfg.Dashboard.OverdueTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignAgent)
	tickets.Post("/:id/priority", cfg.Tickets.ChangePriority)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Post("/:id/escalate", cfg.Tickets.EscalateTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/hold", cfg.Tickets.HoldTicket)
	tickets.Get("/:id/audit-logs", cfg.Tickets.TicketAuditLogs)
	tickets.Get("/:id/comments", cfg.Content.ListComments)
	tickets.Post("/:id/comments", cfg.Content.AddComment)
	tickets.Get("/:id/attachments", cfg.Content.ListAttachments)
	tickets.Post("/:id/attachments", cfg.Content.AddAttachment)

	api.Delete("/comments/:id", cfg.Content.DeleteComment)
	api.Delete("/attachments/:id", cfg.Content.DeleteAttachment)
	api.Get("/audit-logs", cfg.Tickets.AuditLogs)
	api.Get("/dashboard/stats", cfg.Dashboard.Stats)

	departments := api.Group("/departments")
	departments.Get("/", cfg.Directory.ListDepartments)
	departments.Post("/", cfg.Directory.CreateDepartment)
	departments.Get("/:id", cfg.Directory.GetDepartment)
	departments.Put("/:id", cfg.Directory.UpdateDepartment)
	departments.Delete("/:id", cfg.Directory.DeleteDepartment)

	categories := api.Group("/categories")
	categories.Get("/", cfg.Directory.ListCategories)
	categories.Post("/", cfg.Directory.CreateCategory)
	categories.Get("/:id", cfg.Directory.GetCategory)
	categories.Put("/:id", cfg.Directory.UpdateCategory)
	categories.Delete("/:id", cfg.Directory.DeleteCategory)

	employees := api.Group("/employees")
	employees.Get("/", cfg.Directory.ListEmployees)
	employees.Post("/", cfg.Directory.CreateEmployee)
	employees.Get("/:id", cfg.Directory.GetEmployee)
	employees.Put("/:id", cfg.Directory.UpdateEmployee)
	employees.Delete("/:id", cfg.Directory.DeleteEmployee)

	agents := api.Group("/agents")
	agents.Get("/", cfg.Directory.ListAgents)
	agents.Post("/", cfg.Directory.CreateAgent)
	agents.Get("/:id", cfg.Directory.GetAgent)
	agents.Put("/:id", cfg.Directory.UpdateAgent)
	agents.Delete("/:id", cfg.Directory.DeleteAgent)
	agents.Get("/:id/tickets", cfg.Dashboard.AgentTickets)
}
