package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	CategoryID   *string               `json:"categoryId"`
	DepartmentID *string               `json:"departmentId"`
	ReporterID   string                `json:"reporterId"`
}

// UpdateTicketRequest payload. Omitted fields stay as they are.
type UpdateTicketRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Priority     *domain.TicketPriority `json:"priority"`
	CategoryID   *string                `json:"categoryId"`
	DepartmentID *string                `json:"departmentId"`
}

// AssignAgentRequest payload.
type AssignAgentRequest struct {
	AgentID string `json:"agentId"`
}

// ChangePriorityRequest payload.
type ChangePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	ResolutionNote string `json:"resolutionNote"`
}

// ReasonRequest carries the reason for escalate, reopen and hold.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID              string                `json:"id"`
	TicketNumber    string                `json:"ticketNumber"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CategoryID      *string               `json:"categoryId"`
	DepartmentID    *string               `json:"departmentId"`
	ReporterID      string                `json:"reporterId"`
	AssignedAgentID *string               `json:"assignedAgentId"`
	ResolutionNote  *string               `json:"resolutionNote"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	ResolvedAt      *time.Time            `json:"resolvedAt"`
	ClosedAt        *time.Time            `json:"closedAt"`
	DueDate         *time.Time            `json:"dueDate"`
	IsOverdue       bool                  `json:"isOverdue"`
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID          string             `json:"id"`
	TicketID    string             `json:"ticketId"`
	Action      domain.AuditAction `json:"action"`
	OldValue    string             `json:"oldValue"`
	NewValue    string             `json:"newValue"`
	PerformedBy string             `json:"performedBy"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		CategoryID:      ticket.CategoryID,
		DepartmentID:    ticket.DepartmentID,
		ReporterID:      ticket.ReporterID,
		AssignedAgentID: ticket.AssignedAgentID,
		ResolutionNote:  ticket.ResolutionNote,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		ResolvedAt:      ticket.ResolvedAt,
		ClosedAt:        ticket.ClosedAt,
		DueDate:         ticket.DueDate,
		IsOverdue:       ticket.IsOverdue,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewAuditLogResponses maps audit entries.
func NewAuditLogResponses(entries []domain.AuditLog) []AuditLogResponse {
	items := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, AuditLogResponse{
			ID:          entry.ID,
			TicketID:    entry.TicketID,
			Action:      entry.Action,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			PerformedBy: entry.PerformedBy,
			Timestamp:   entry.Timestamp,
		})
	}
	return items
}
