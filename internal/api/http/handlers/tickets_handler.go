package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket CRUD and lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
	audit   *service.AuditRecorder
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, audit *service.AuditRecorder) *TicketsHandler {
	return &TicketsHandler{service: ticketService, audit: audit}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     normalizePriority(req.Priority),
		CategoryID:   req.CategoryID,
		DepartmentID: req.DepartmentID,
		ReporterID:   req.ReporterID,
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), input, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority != nil {
		priority := normalizePriority(*req.Priority)
		req.Priority = &priority
	}
	input := service.TicketUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		CategoryID:   req.CategoryID,
		DepartmentID: req.DepartmentID,
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), input, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id"), auth.PerformerFromContext(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AssignAgent POST /tickets/:id/assign.
func (h *TicketsHandler) AssignAgent(c *fiber.Ctx) error {
	var req dto.AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AssignAgent(c.UserContext(), c.Params("id"), strings.TrimSpace(req.AgentID), auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangePriority POST /tickets/:id/priority.
func (h *TicketsHandler) ChangePriority(c *fiber.Ctx) error {
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority := normalizePriority(req.Priority)
	ticket, err := h.service.ChangePriority(c.UserContext(), c.Params("id"), priority, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ResolveTicket(c.UserContext(), c.Params("id"), req.ResolutionNote, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticket, err := h.service.CloseTicket(c.UserContext(), c.Params("id"), auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// EscalateTicket POST /tickets/:id/escalate. The body is optional.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	var req dto.ReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.EscalateTicket(c.UserContext(), c.Params("id"), req.Reason, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("id"), req.Reason, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// HoldTicket POST /tickets/:id/hold.
func (h *TicketsHandler) HoldTicket(c *fiber.Ctx) error {
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.HoldTicket(c.UserContext(), c.Params("id"), req.Reason, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// TicketAuditLogs GET /tickets/:id/audit-logs.
func (h *TicketsHandler) TicketAuditLogs(c *fiber.Ctx) error {
	entries, err := h.audit.ListForTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditLogResponses(entries)})
}

// AuditLogs GET /audit-logs.
func (h *TicketsHandler) AuditLogs(c *fiber.Ctx) error {
	limit, offset := parsePage(c, 50)
	entries, err := h.audit.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditLogResponses(entries)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, normalizePriority(domain.TicketPriority(part)))
		}
	}
	filter.AssignedAgentID = queryPtr(c, "assignedAgentId")
	filter.ReporterID = queryPtr(c, "reporterId")
	filter.CategoryID = queryPtr(c, "categoryId")
	filter.DepartmentID = queryPtr(c, "departmentId")
	filter.SearchTerm = queryPtr(c, "search")
	filter.Limit, filter.Offset = parsePage(c, 20)
	return filter
}

const (
	maxPageSize = 200
	maxPage     = 1_000_000
)

// parsePage turns page/pageSize into limit/offset. Pages past maxPage are
// clamped to it, which reads as an empty page rather than wrapping around.
func parsePage(c *fiber.Ctx, defaultSize int) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	if page > maxPage {
		page = maxPage
	}
	pageSize := parseInt(c.Query("pageSize"), defaultSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

func normalizePriority(p domain.TicketPriority) domain.TicketPriority {
	return domain.TicketPriority(strings.ToUpper(strings.TrimSpace(string(p))))
}

func queryPtr(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func parseBool(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
