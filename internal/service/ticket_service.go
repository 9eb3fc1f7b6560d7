package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	audit      *AuditRecorder
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Audit      *AuditRecorder
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	Priority     domain.TicketPriority
	CategoryID   *string
	DepartmentID *string
	ReporterID   string
}

// TicketUpdateInput carries the fields a generic edit may change. Nil
// fields are left untouched.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Priority     *domain.TicketPriority
	CategoryID   *string
	DepartmentID *string
}

func (in TicketUpdateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil && in.CategoryID == nil && in.DepartmentID == nil
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses        []domain.TicketStatus
	Priorities      []domain.TicketPriority
	AssignedAgentID *string
	ReporterID      *string
	CategoryID      *string
	DepartmentID    *string
	SearchTerm      *string
	Limit           int
	Offset          int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := clockOrNow(deps.Clock)
	audit := deps.Audit
	if audit == nil {
		audit = NewAuditRecorder(deps.Store.AuditLogs(), clock)
	}
	return &TicketService{
		store:      deps.Store,
		audit:      audit,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket opens a ticket, numbering it from the per-year sequence and
// fixing its due date from the category SLA.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput, performer domain.Performer) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ReporterID) == "" {
		return nil, apperrors.NewValidationError("reporterId is required", nil)
	}
	if err := requireID("reporter", input.ReporterID); err != nil {
		return nil, err
	}
	if err := requireOptionalID("category", input.CategoryID); err != nil {
		return nil, err
	}
	if err := requireOptionalID("department", input.DepartmentID); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, invalidPriority(priority)
	}

	var ticketID string
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		reporter, err := repos.Employees().GetByID(ctx, input.ReporterID)
		if err != nil {
			return referenceError(err, "reporter", input.ReporterID)
		}

		slaHours := 0
		if input.CategoryID != nil {
			category, err := repos.Categories().GetByID(ctx, *input.CategoryID)
			if err != nil {
				return referenceError(err, "category", *input.CategoryID)
			}
			slaHours = category.SLAHours
		}

		departmentID := input.DepartmentID
		if departmentID != nil {
			if _, err := repos.Departments().GetByID(ctx, *departmentID); err != nil {
				return referenceError(err, "department", *departmentID)
			}
		} else {
			departmentID = reporter.DepartmentID
		}

		now := s.now().UTC()
		seq, err := repos.Tickets().NextSequence(ctx, now.Year())
		if err != nil {
			return apperrors.MapError(err)
		}

		ticket := &domain.Ticket{
			TicketNumber: domain.FormatTicketNumber(now.Year(), seq),
			Title:        title,
			Description:  description,
			Status:       domain.TicketStatusOpen,
			Priority:     priority,
			CategoryID:   input.CategoryID,
			DepartmentID: departmentID,
			ReporterID:   reporter.ID,
			CreatedAt:    now,
			DueDate:      domain.DueDateFor(now, slaHours),
		}
		if err := repos.Tickets().Create(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		ticketID = ticket.ID

		_, err = s.audit.Append(ctx, repos, ticket.ID, domain.AuditActionCreated, "", ticket.TicketNumber, performer)
		return err
	})
	if err != nil {
		return nil, err
	}

	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, domain.AuditActionCreated, ticket, performer, "", ticket.TicketNumber)
	return ticket, nil
}

// GetTicket loads a ticket with its overdue flag computed.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := requireID("ticket", ticketID); err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", ticketID)
	}
	ticket.RefreshOverdue(s.now())
	return ticket, nil
}

// ListTickets returns tickets matching filter, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
		}
	}
	for _, priority := range filter.Priorities {
		if !priority.Valid() {
			return nil, invalidPriority(priority)
		}
	}
	for resource, id := range map[string]*string{
		"agent":      filter.AssignedAgentID,
		"reporter":   filter.ReporterID,
		"category":   filter.CategoryID,
		"department": filter.DepartmentID,
	} {
		if err := requireOptionalID(resource, id); err != nil {
			return nil, err
		}
	}

	tickets, err := s.store.Tickets().ListWithFilter(ctx, repository.TicketFilter{
		Statuses:        filter.Statuses,
		Priorities:      filter.Priorities,
		AssignedAgentID: filter.AssignedAgentID,
		ReporterID:      filter.ReporterID,
		CategoryID:      filter.CategoryID,
		DepartmentID:    filter.DepartmentID,
		SearchTerm:      filter.SearchTerm,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refreshOverdue(tickets, s.now())
	return tickets, nil
}

// UpdateTicket applies a generic edit. Closed tickets reject every edit.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, input TicketUpdateInput, performer domain.Performer) (*domain.Ticket, error) {
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionUpdated,
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if ticket.Status == domain.TicketStatusClosed {
				return "", "", apperrors.NewConflict("closed tickets cannot be updated", map[string]any{"ticket_id": ticket.ID})
			}
			if input.empty() {
				return "", "", apperrors.NewValidationError("no updatable fields supplied", nil)
			}
			if err := requireOptionalID("category", input.CategoryID); err != nil {
				return "", "", err
			}
			if err := requireOptionalID("department", input.DepartmentID); err != nil {
				return "", "", err
			}
			return applyUpdate(ctx, repos, ticket, input)
		},
	})
}

func applyUpdate(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, input TicketUpdateInput) (string, string, error) {
	var oldParts, newParts []string
	record := func(field, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		oldParts = append(oldParts, field+"="+oldValue)
		newParts = append(newParts, field+"="+newValue)
	}

	if title := trimmedPtr(input.Title); title != nil {
		if err := validateTitle(*title); err != nil {
			return "", "", err
		}
		record("title", ticket.Title, *title)
		ticket.Title = *title
	}
	if description := trimmedPtr(input.Description); description != nil {
		if err := validateDescription(*description); err != nil {
			return "", "", err
		}
		record("description", ticket.Description, *description)
		ticket.Description = *description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return "", "", invalidPriority(*input.Priority)
		}
		record("priority", string(ticket.Priority), string(*input.Priority))
		ticket.Priority = *input.Priority
	}
	if input.CategoryID != nil {
		if _, err := repos.Categories().GetByID(ctx, *input.CategoryID); err != nil {
			return "", "", referenceError(err, "category", *input.CategoryID)
		}
		record("categoryId", valueOr(ticket.CategoryID, ""), *input.CategoryID)
		ticket.CategoryID = input.CategoryID
	}
	if input.DepartmentID != nil {
		if _, err := repos.Departments().GetByID(ctx, *input.DepartmentID); err != nil {
			return "", "", referenceError(err, "department", *input.DepartmentID)
		}
		record("departmentId", valueOr(ticket.DepartmentID, ""), *input.DepartmentID)
		ticket.DepartmentID = input.DepartmentID
	}

	if len(newParts) == 0 {
		return "", "", errUnchanged
	}
	return strings.Join(oldParts, "; "), strings.Join(newParts, "; "), nil
}

// DeleteTicket removes a ticket together with its comments and attachments.
// The audit trail is kept and gains a DELETED entry.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string, performer domain.Performer) error {
	if err := requireID("ticket", ticketID); err != nil {
		return err
	}
	var deleted *domain.Ticket
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ticket, err := repos.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		if err := repos.Tickets().Delete(ctx, ticket.ID); err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		deleted = ticket
		_, err = s.audit.Append(ctx, repos, ticket.ID, domain.AuditActionDeleted, ticket.TicketNumber, "", performer)
		return err
	})
	if err != nil {
		return err
	}
	s.announce(ctx, domain.AuditActionDeleted, deleted, performer, deleted.TicketNumber, "")
	return nil
}

// AssignAgent hands the ticket to an active agent. Open and on-hold tickets
// move to IN_PROGRESS.
func (s *TicketService) AssignAgent(ctx context.Context, ticketID, agentID string, performer domain.Performer) (*domain.Ticket, error) {
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionAssigned,
		validate: func() error {
			if strings.TrimSpace(agentID) == "" {
				return apperrors.NewValidationError("agentId is required", nil)
			}
			return requireID("agent", agentID)
		},
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if ticket.Status == domain.TicketStatusClosed {
				return "", "", apperrors.NewConflict("cannot assign a closed ticket", map[string]any{"ticket_id": ticket.ID})
			}
			agent, err := repos.Agents().GetByID(ctx, agentID)
			if err != nil {
				return "", "", lookupError(err, "agent", agentID)
			}
			if !agent.IsActive {
				return "", "", apperrors.NewConflict("agent is inactive", map[string]any{"agent_id": agentID})
			}
			oldValue := valueOr(ticket.AssignedAgentID, "unassigned")
			ticket.AssignedAgentID = &agent.ID
			if ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusOnHold {
				ticket.Status = domain.TicketStatusInProgress
			}
			return oldValue, agent.ID, nil
		},
	})
}

// ChangePriority sets a new priority on an unfinished ticket.
func (s *TicketService) ChangePriority(ctx context.Context, ticketID string, priority domain.TicketPriority, performer domain.Performer) (*domain.Ticket, error) {
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionPriorityChanged,
		validate: func() error {
			if !priority.Valid() {
				return invalidPriority(priority)
			}
			return nil
		},
		apply: func(_ context.Context, _ repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if ticket.Status.Terminal() {
				return "", "", apperrors.NewConflict("cannot change priority of a "+strings.ToLower(string(ticket.Status))+" ticket", map[string]any{"ticket_id": ticket.ID})
			}
			if ticket.Priority == priority {
				return "", "", apperrors.NewConflict("ticket already has priority "+string(priority), map[string]any{"ticket_id": ticket.ID})
			}
			oldValue := string(ticket.Priority)
			ticket.Priority = priority
			return oldValue, string(priority), nil
		},
	})
}

// ResolveTicket records the resolution and posts the note as a public comment.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID, resolutionNote string, performer domain.Performer) (*domain.Ticket, error) {
	note := strings.TrimSpace(resolutionNote)
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionResolved,
		validate: func() error {
			if utf8.RuneCountInString(note) < domain.MinResolutionNoteLength {
				return apperrors.NewValidationError(
					fmt.Sprintf("resolution note must be at least %d characters", domain.MinResolutionNoteLength), nil)
			}
			return nil
		},
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, now time.Time) (string, string, error) {
			switch ticket.Status {
			case domain.TicketStatusResolved:
				return "", "", apperrors.NewConflict("ticket is already resolved", map[string]any{"ticket_id": ticket.ID})
			case domain.TicketStatusClosed:
				return "", "", apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
			}
			oldValue := string(ticket.Status)
			ticket.Status = domain.TicketStatusResolved
			ticket.ResolvedAt = &now
			ticket.ClosedAt = nil
			ticket.ResolutionNote = &note
			if err := addSideComment(ctx, repos, ticket.ID, note, false, performer); err != nil {
				return "", "", err
			}
			return oldValue, string(ticket.Status), nil
		},
	})
}

// CloseTicket closes a resolved ticket.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID string, performer domain.Performer) (*domain.Ticket, error) {
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionClosed,
		apply: func(_ context.Context, _ repository.Repositories, ticket *domain.Ticket, now time.Time) (string, string, error) {
			if ticket.Status != domain.TicketStatusResolved {
				return "", "", apperrors.NewConflict("only resolved tickets can be closed", map[string]any{
					"ticket_id": ticket.ID,
					"status":    ticket.Status,
				})
			}
			oldValue := string(ticket.Status)
			ticket.Status = domain.TicketStatusClosed
			ticket.ClosedAt = &now
			return oldValue, string(ticket.Status), nil
		},
	})
}

// EscalateTicket bumps the priority one step and puts the ticket in progress.
// A non-empty reason is kept as an internal comment.
func (s *TicketService) EscalateTicket(ctx context.Context, ticketID, reason string, performer domain.Performer) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	return s.runTransition(ctx, ticketID, performer, transition{
		action: domain.AuditActionEscalated,
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if ticket.Status.Terminal() {
				return "", "", apperrors.NewConflict("cannot escalate a "+strings.ToLower(string(ticket.Status))+" ticket", map[string]any{"ticket_id": ticket.ID})
			}
			oldValue := string(ticket.Priority)
			ticket.Priority = ticket.Priority.Escalated()
			ticket.Status = domain.TicketStatusInProgress
			if reason != "" {
				if err := addSideComment(ctx, repos, ticket.ID, "Escalated: "+reason, true, performer); err != nil {
					return "", "", err
				}
			}
			return oldValue, string(ticket.Priority), nil
		},
	})
}

// ReopenTicket returns a resolved or closed ticket to OPEN, clearing the
// resolution fields.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID, reason string, performer domain.Performer) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	return s.runTransition(ctx, ticketID, performer, transition{
		action:   domain.AuditActionReopened,
		validate: func() error { return validateReason(reason) },
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if !ticket.Status.Terminal() {
				return "", "", apperrors.NewConflict("only resolved or closed tickets can be reopened", map[string]any{
					"ticket_id": ticket.ID,
					"status":    ticket.Status,
				})
			}
			oldValue := string(ticket.Status)
			ticket.Status = domain.TicketStatusOpen
			ticket.ResolvedAt = nil
			ticket.ClosedAt = nil
			ticket.ResolutionNote = nil
			if err := addSideComment(ctx, repos, ticket.ID, "Reopened: "+reason, false, performer); err != nil {
				return "", "", err
			}
			return oldValue, string(ticket.Status), nil
		},
	})
}

// HoldTicket parks an open or in-progress ticket.
func (s *TicketService) HoldTicket(ctx context.Context, ticketID, reason string, performer domain.Performer) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	return s.runTransition(ctx, ticketID, performer, transition{
		action:   domain.AuditActionOnHold,
		validate: func() error { return validateReason(reason) },
		apply: func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, _ time.Time) (string, string, error) {
			if ticket.Status != domain.TicketStatusOpen && ticket.Status != domain.TicketStatusInProgress {
				return "", "", apperrors.NewConflict("only open or in-progress tickets can be put on hold", map[string]any{
					"ticket_id": ticket.ID,
					"status":    ticket.Status,
				})
			}
			oldValue := string(ticket.Status)
			ticket.Status = domain.TicketStatusOnHold
			if err := addSideComment(ctx, repos, ticket.ID, "On hold: "+reason, false, performer); err != nil {
				return "", "", err
			}
			return oldValue, string(ticket.Status), nil
		},
	})
}

// errUnchanged aborts a transition whose input matches the stored ticket.
var errUnchanged = errors.New("ticket unchanged")

// transition is one lifecycle action. validate checks the request alone and
// runs before any store access; apply checks the locked ticket and mutates
// it, returning the audit old/new values.
type transition struct {
	action   domain.AuditAction
	validate func() error
	apply    func(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, now time.Time) (oldValue, newValue string, err error)
}

// runTransition locks the ticket, applies t and appends the audit entry in a
// single transaction, then reloads the ticket and announces the change.
func (s *TicketService) runTransition(ctx context.Context, ticketID string, performer domain.Performer, t transition) (*domain.Ticket, error) {
	if err := requireID("ticket", ticketID); err != nil {
		return nil, err
	}
	if t.validate != nil {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}

	var oldValue, newValue string
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ticket, err := repos.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		now := s.now().UTC()
		oldValue, newValue, err = t.apply(ctx, repos, ticket, now)
		if err != nil {
			return err
		}
		if err := repos.Tickets().Update(ctx, ticket); err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		_, err = s.audit.Append(ctx, repos, ticket.ID, t.action, oldValue, newValue, performer)
		return err
	})
	if errors.Is(err, errUnchanged) {
		return s.GetTicket(ctx, ticketID)
	}
	if err != nil {
		return nil, err
	}

	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, t.action, ticket, performer, oldValue, newValue)
	return ticket, nil
}

func (s *TicketService) announce(ctx context.Context, action domain.AuditAction, ticket *domain.Ticket, performer domain.Performer, oldValue, newValue string) {
	s.logger.Info("ticket "+strings.ToLower(string(action)),
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("action", string(action)),
		zap.String("performer", performer.Label()))

	eventType, ok := events.TypeForAction(action)
	if !ok || s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		PerformedBy:  performer.Label(),
		Timestamp:    s.now().UTC(),
		Payload: events.TicketChangedPayload{
			OldValue:        oldValue,
			NewValue:        newValue,
			Status:          ticket.Status,
			Priority:        ticket.Priority,
			AssignedAgentID: ticket.AssignedAgentID,
		},
	})
}

func addSideComment(ctx context.Context, repos repository.Repositories, ticketID, text string, internal bool, performer domain.Performer) error {
	name := performer.Name
	if name == "" {
		name = domain.SystemPerformer
	}
	comment := &domain.Comment{
		TicketID:    ticketID,
		Text:        text,
		IsInternal:  internal,
		AuthorName:  name,
		AuthorEmail: performer.Email,
	}
	if err := repos.Comments().Create(ctx, comment); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func refreshOverdue(tickets []domain.Ticket, now time.Time) {
	for i := range tickets {
		tickets[i].RefreshOverdue(now)
	}
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < domain.MinTitleLength {
		return apperrors.NewValidationError(fmt.Sprintf("title must be at least %d characters", domain.MinTitleLength), nil)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) < domain.MinDescriptionLength {
		return apperrors.NewValidationError(fmt.Sprintf("description must be at least %d characters", domain.MinDescriptionLength), nil)
	}
	return nil
}

func validateReason(reason string) error {
	if utf8.RuneCountInString(reason) < domain.MinReasonLength {
		return apperrors.NewValidationError(fmt.Sprintf("reason must be at least %d characters", domain.MinReasonLength), nil)
	}
	return nil
}

func invalidPriority(priority domain.TicketPriority) error {
	return apperrors.NewValidationError("invalid priority", map[string]any{
		"priority": priority,
		"allowed":  []domain.TicketPriority{domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityCritical},
	})
}

func valueOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
