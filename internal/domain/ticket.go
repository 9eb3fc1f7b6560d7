package domain

import (
	"fmt"
	"regexp"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusOnHold, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether work on the ticket has finished.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is one of the known levels.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities from LOW (1) to CRITICAL (4). Unknown values rank 0.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityHigh:
		return 3
	case TicketPriorityCritical:
		return 4
	}
	return 0
}

// Escalated returns the next priority step. CRITICAL is the ceiling and
// anything unrecognized lands on HIGH.
func (p TicketPriority) Escalated() TicketPriority {
	switch p {
	case TicketPriorityLow:
		return TicketPriorityMedium
	case TicketPriorityMedium:
		return TicketPriorityHigh
	case TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriorityCritical
	}
	return TicketPriorityHigh
}

// Field length minimums enforced by the lifecycle.
const (
	MinTitleLength          = 5
	MinDescriptionLength    = 10
	MinResolutionNoteLength = 10
	MinReasonLength         = 5
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	TicketNumber    string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CategoryID      *string
	DepartmentID    *string
	ReporterID      string
	AssignedAgentID *string
	ResolutionNote  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	DueDate         *time.Time
	IsOverdue       bool
}

// Overdue reports whether the ticket missed its due date as of now.
func (t *Ticket) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.Terminal() {
		return false
	}
	return t.DueDate.Before(now)
}

// RefreshOverdue recomputes the derived overdue flag.
func (t *Ticket) RefreshOverdue(now time.Time) {
	t.IsOverdue = t.Overdue(now)
}

// DueDateFor computes the resolution target from the creation time and the
// category SLA. A zero or negative SLA yields no due date.
func DueDateFor(createdAt time.Time, slaHours int) *time.Time {
	if slaHours <= 0 {
		return nil
	}
	due := createdAt.Add(time.Duration(slaHours) * time.Hour)
	return &due
}

var ticketNumberPattern = regexp.MustCompile(`^TKT-\d{4}-\d{5,}$`)

// FormatTicketNumber renders the human readable ticket number.
func FormatTicketNumber(year int, seq int64) string {
	return fmt.Sprintf("TKT-%d-%05d", year, seq)
}

// IsTicketNumber reports whether s looks like a ticket number.
func IsTicketNumber(s string) bool {
	return ticketNumberPattern.MatchString(s)
}
