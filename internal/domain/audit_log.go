package domain

import "time"

// AuditAction labels what happened to a ticket.
type AuditAction string

const (
	AuditActionCreated         AuditAction = "CREATED"
	AuditActionUpdated         AuditAction = "UPDATED"
	AuditActionAssigned        AuditAction = "ASSIGNED"
	AuditActionPriorityChanged AuditAction = "PRIORITY_CHANGED"
	AuditActionResolved        AuditAction = "RESOLVED"
	AuditActionClosed          AuditAction = "CLOSED"
	AuditActionEscalated       AuditAction = "ESCALATED"
	AuditActionReopened        AuditAction = "REOPENED"
	AuditActionOnHold          AuditAction = "ON_HOLD"
	AuditActionDeleted         AuditAction = "DELETED"
)

// AuditLog is an immutable audit trail entry.
type AuditLog struct {
	ID          string
	TicketID    string
	Action      AuditAction
	OldValue    string
	NewValue    string
	PerformedBy string
	Timestamp   time.Time
}

// DashboardStats is the fixed-shape aggregate served to the dashboard.
type DashboardStats struct {
	TotalTickets      int64 `json:"totalTickets"`
	OpenTickets       int64 `json:"openTickets"`
	InProgressTickets int64 `json:"inProgressTickets"`
	ResolvedToday     int64 `json:"resolvedToday"`
	OverdueTickets    int64 `json:"overdueTickets"`
	CriticalTickets   int64 `json:"criticalTickets"`
}
