package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketUpdated         EventType = "ticket_updated"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketResolved        EventType = "ticket_resolved"
	EventTicketClosed          EventType = "ticket_closed"
	EventTicketEscalated       EventType = "ticket_escalated"
	EventTicketReopened        EventType = "ticket_reopened"
	EventTicketOnHold          EventType = "ticket_on_hold"
	EventTicketDeleted         EventType = "ticket_deleted"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
)

// TicketEventTypes lists every event emitted for tickets.
var TicketEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketAssigned,
	EventTicketPriorityChanged,
	EventTicketResolved,
	EventTicketClosed,
	EventTicketEscalated,
	EventTicketReopened,
	EventTicketOnHold,
	EventTicketDeleted,
	EventTicketCommentAdded,
}

var auditEventTypes = map[domain.AuditAction]EventType{
	domain.AuditActionCreated:         EventTicketCreated,
	domain.AuditActionUpdated:         EventTicketUpdated,
	domain.AuditActionAssigned:        EventTicketAssigned,
	domain.AuditActionPriorityChanged: EventTicketPriorityChanged,
	domain.AuditActionResolved:        EventTicketResolved,
	domain.AuditActionClosed:          EventTicketClosed,
	domain.AuditActionEscalated:       EventTicketEscalated,
	domain.AuditActionReopened:        EventTicketReopened,
	domain.AuditActionOnHold:          EventTicketOnHold,
	domain.AuditActionDeleted:         EventTicketDeleted,
}

// TypeForAction maps an audit action to the event announcing it.
func TypeForAction(action domain.AuditAction) (EventType, bool) {
	eventType, ok := auditEventTypes[action]
	return eventType, ok
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TicketID     string    `json:"ticketId"`
	TicketNumber string    `json:"ticketNumber,omitempty"`
	PerformedBy  string    `json:"performedBy"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload,omitempty"`
}

// TicketChangedPayload describes a lifecycle transition.
type TicketChangedPayload struct {
	OldValue        string                `json:"oldValue,omitempty"`
	NewValue        string                `json:"newValue,omitempty"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	AssignedAgentID *string               `json:"assignedAgentId,omitempty"`
}

// CommentAddedPayload describes a new ticket comment.
type CommentAddedPayload struct {
	CommentID   string `json:"commentId"`
	IsInternal  bool   `json:"isInternal"`
	AuthorName  string `json:"authorName"`
	TextPreview string `json:"textPreview"`
}
