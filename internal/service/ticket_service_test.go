package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestCreateTicket_NumbersAndDueDate(t *testing.T) {
	f := newFixture(t)

	ticket := f.openTicket(t)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "TKT-2026-00001", ticket.TicketNumber)
	assert.True(t, domain.IsTicketNumber(ticket.TicketNumber))
	require.NotNil(t, ticket.DueDate)
	assert.True(t, ticket.DueDate.Equal(baseTime.Add(24*time.Hour)))
	assert.False(t, ticket.IsOverdue)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)

	second := f.openTicket(t)
	assert.Equal(t, "TKT-2026-00002", second.TicketNumber)

	entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreated, entries[0].Action)
	assert.Equal(t, ticket.TicketNumber, entries[0].NewValue)
	assert.Equal(t, "Dana Agent <dana@example.com>", entries[0].PerformedBy)
	assert.True(t, entries[0].Timestamp.Equal(baseTime))

	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketCreated}, f.published.types())
}

func TestCreateTicket_NoCategoryMeansNoDueDate(t *testing.T) {
	f := newFixture(t)

	ticket := f.ticketWith(t, domain.TicketPriorityLow, 0)
	assert.Nil(t, ticket.DueDate)

	zeroSLA := f.category(t, "No SLA", 0)
	reporter := f.employee(t, uniqueEmail(), nil)
	ticket, err := f.tickets.CreateTicket(f.ctx, TicketCreateInput{
		Title:       "Monitor flickers",
		Description: "Second monitor flickers every few minutes",
		CategoryID:  &zeroSLA.ID,
		ReporterID:  reporter.ID,
	}, f.performer)
	require.NoError(t, err)
	assert.Nil(t, ticket.DueDate)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicket_DepartmentDefaultsToReporter(t *testing.T) {
	f := newFixture(t)
	dept := f.department(t, "Finance")
	reporter := f.employee(t, "accountant@example.com", &dept.ID)

	ticket, err := f.tickets.CreateTicket(f.ctx, TicketCreateInput{
		Title:       "VPN keeps dropping",
		Description: "The VPN disconnects every ten minutes",
		ReporterID:  reporter.ID,
	}, domain.Performer{})
	require.NoError(t, err)
	require.NotNil(t, ticket.DepartmentID)
	assert.Equal(t, dept.ID, *ticket.DepartmentID)

	entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SystemPerformer, entries[0].PerformedBy)
}

func TestCreateTicket_Validation(t *testing.T) {
	f := newFixture(t)
	reporter := f.employee(t, "reporter@example.com", nil)
	missing := uuid.NewString()

	tests := []struct {
		name  string
		input TicketCreateInput
	}{
		{"short title", TicketCreateInput{Title: "Help", Description: "The office printer is jammed", ReporterID: reporter.ID}},
		{"title padded with spaces", TicketCreateInput{Title: "  Hi  ", Description: "The office printer is jammed", ReporterID: reporter.ID}},
		{"short description", TicketCreateInput{Title: "Printer not working", Description: "Broken", ReporterID: reporter.ID}},
		{"missing reporter", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed"}},
		{"malformed reporter", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed", ReporterID: "42"}},
		{"unknown reporter", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed", ReporterID: missing}},
		{"unknown category", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed", ReporterID: reporter.ID, CategoryID: &missing}},
		{"unknown department", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed", ReporterID: reporter.ID, DepartmentID: &missing}},
		{"invalid priority", TicketCreateInput{Title: "Printer not working", Description: "The office printer is jammed", ReporterID: reporter.ID, Priority: "URGENT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tickets.CreateTicket(f.ctx, tt.input, f.performer)
			requireKind(t, err, "VALIDATION_FAILED")
		})
	}

	tickets, err := f.tickets.ListTickets(f.ctx, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestGetTicket_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.tickets.GetTicket(f.ctx, "not-a-uuid")
	requireKind(t, err, "VALIDATION_FAILED")

	_, err = f.tickets.GetTicket(f.ctx, uuid.NewString())
	requireKind(t, err, "NOT_FOUND")
}

func TestUpdateTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t)

	title := "Printer still not working"
	updated, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{Title: &title}, f.performer)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, ticket.TicketNumber, updated.TicketNumber)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(*ticket.DueDate))

	entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionUpdated, entries[1].Action)
	assert.Equal(t, "title=Printer not working", entries[1].OldValue)
	assert.Equal(t, "title=Printer still not working", entries[1].NewValue)

	t.Run("same values leave no trail", func(t *testing.T) {
		same, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{Title: &title}, f.performer)
		require.NoError(t, err)
		assert.Equal(t, title, same.Title)
		assert.Equal(t, 2, f.auditCount(t, ticket.ID))
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{}, f.performer)
		requireKind(t, err, "VALIDATION_FAILED")
	})

	t.Run("short description", func(t *testing.T) {
		short := "tiny"
		_, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{Description: &short}, f.performer)
		requireKind(t, err, "VALIDATION_FAILED")
		assert.Equal(t, 2, f.auditCount(t, ticket.ID))
	})

	t.Run("category change keeps due date", func(t *testing.T) {
		longer := f.category(t, "Slow lane", 72)
		moved, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{CategoryID: &longer.ID}, f.performer)
		require.NoError(t, err)
		require.NotNil(t, moved.CategoryID)
		assert.Equal(t, longer.ID, *moved.CategoryID)
		require.NotNil(t, moved.DueDate)
		assert.True(t, moved.DueDate.Equal(*ticket.DueDate))
	})
}

func TestUpdateTicket_ClosedRejectedRegardlessOfPayload(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticketInStatus(t, domain.TicketStatusClosed)
	before := f.auditCount(t, ticket.ID)

	title := "A perfectly valid title"
	bad := "x"
	payloads := map[string]TicketUpdateInput{
		"valid title":   {Title: &title},
		"empty":         {},
		"invalid title": {Title: &bad},
	}
	for name, input := range payloads {
		t.Run(name, func(t *testing.T) {
			_, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, input, f.performer)
			requireKind(t, err, "CONFLICT")
		})
	}

	current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Printer not working", current.Title)
	assert.Equal(t, domain.TicketStatusClosed, current.Status)
	assert.Equal(t, before, f.auditCount(t, ticket.ID))
}

func TestAssignAgent(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "agent@example.com", true)

	t.Run("open moves to in progress", func(t *testing.T) {
		ticket := f.openTicket(t)
		assigned, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
		require.NotNil(t, assigned.AssignedAgentID)
		assert.Equal(t, agent.ID, *assigned.AssignedAgentID)

		entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
		require.NoError(t, err)
		last := entries[len(entries)-1]
		assert.Equal(t, domain.AuditActionAssigned, last.Action)
		assert.Equal(t, "unassigned", last.OldValue)
		assert.Equal(t, agent.ID, last.NewValue)
	})

	t.Run("on hold moves to in progress", func(t *testing.T) {
		ticket := f.ticketInStatus(t, domain.TicketStatusOnHold)
		assigned, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	})

	t.Run("resolved keeps status", func(t *testing.T) {
		ticket := f.ticketInStatus(t, domain.TicketStatusResolved)
		assigned, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, assigned.Status)
	})

	t.Run("closed is rejected and unchanged", func(t *testing.T) {
		ticket := f.ticketInStatus(t, domain.TicketStatusClosed)
		before := f.auditCount(t, ticket.ID)
		_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
		requireKind(t, err, "CONFLICT")

		current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
		require.NoError(t, err)
		assert.Nil(t, current.AssignedAgentID)
		assert.Equal(t, domain.TicketStatusClosed, current.Status)
		assert.Equal(t, before, f.auditCount(t, ticket.ID))
	})

	t.Run("inactive agent", func(t *testing.T) {
		inactive := f.agent(t, "retired@example.com", false)
		ticket := f.openTicket(t)
		_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, inactive.ID, f.performer)
		requireKind(t, err, "CONFLICT")
	})

	t.Run("unknown agent", func(t *testing.T) {
		ticket := f.openTicket(t)
		_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, uuid.NewString(), f.performer)
		requireKind(t, err, "NOT_FOUND")
		assert.Equal(t, 1, f.auditCount(t, ticket.ID))
	})

	t.Run("missing agent id", func(t *testing.T) {
		ticket := f.openTicket(t)
		_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, "", f.performer)
		requireKind(t, err, "VALIDATION_FAILED")
	})
}

func TestChangePriority(t *testing.T) {
	f := newFixture(t)

	ticket := f.openTicket(t)
	changed, err := f.tickets.ChangePriority(f.ctx, ticket.ID, domain.TicketPriorityHigh, f.performer)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, changed.Priority)
	assert.Equal(t, domain.TicketStatusOpen, changed.Status)

	_, err = f.tickets.ChangePriority(f.ctx, ticket.ID, domain.TicketPriorityHigh, f.performer)
	requireKind(t, err, "CONFLICT")

	_, err = f.tickets.ChangePriority(f.ctx, ticket.ID, "URGENT", f.performer)
	requireKind(t, err, "VALIDATION_FAILED")

	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		terminal := f.ticketInStatus(t, status)
		_, err := f.tickets.ChangePriority(f.ctx, terminal.ID, domain.TicketPriorityLow, f.performer)
		requireKind(t, err, "CONFLICT")
	}
}

func TestResolveTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t)

	t.Run("short note", func(t *testing.T) {
		_, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "fixed it", f.performer)
		requireKind(t, err, "VALIDATION_FAILED")

		current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, current.Status)
		assert.Nil(t, current.ResolvedAt)
		assert.Equal(t, 1, f.auditCount(t, ticket.ID))
	})

	f.clock.Advance(time.Hour)
	resolved, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "  Replaced the fuser unit  ", f.performer)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(baseTime.Add(time.Hour)))
	require.NotNil(t, resolved.ResolutionNote)
	assert.Equal(t, "Replaced the fuser unit", *resolved.ResolutionNote)
	assert.Nil(t, resolved.ClosedAt)

	comments, err := f.content.ListComments(f.ctx, ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Replaced the fuser unit", comments[0].Text)
	assert.Equal(t, "Dana Agent", comments[0].AuthorName)

	t.Run("twice", func(t *testing.T) {
		_, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "Replaced the fuser unit again", f.performer)
		requireKind(t, err, "CONFLICT")
		assert.Contains(t, err.Error(), "already resolved")
		assert.Equal(t, 2, f.auditCount(t, ticket.ID))
	})

	t.Run("closed", func(t *testing.T) {
		closed := f.ticketInStatus(t, domain.TicketStatusClosed)
		_, err := f.tickets.ResolveTicket(f.ctx, closed.ID, "Replaced the fuser unit", f.performer)
		requireKind(t, err, "CONFLICT")
	})
}

func TestCloseTicket_OnlyFromResolved(t *testing.T) {
	f := newFixture(t)

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusOnHold,
		domain.TicketStatusClosed,
	} {
		t.Run(string(status), func(t *testing.T) {
			ticket := f.ticketInStatus(t, status)
			before := f.auditCount(t, ticket.ID)

			_, err := f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
			requireKind(t, err, "CONFLICT")

			current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, status, current.Status)
			assert.Equal(t, before, f.auditCount(t, ticket.ID))
		})
	}

	t.Run(string(domain.TicketStatusResolved), func(t *testing.T) {
		ticket := f.ticketInStatus(t, domain.TicketStatusResolved)
		f.clock.Advance(30 * time.Minute)
		closed, err := f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)
		assert.NotNil(t, closed.ResolvedAt)
		assert.True(t, closed.ClosedAt.After(*closed.ResolvedAt))
	})
}

func TestEscalateTicket(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		from domain.TicketPriority
		want domain.TicketPriority
	}{
		{domain.TicketPriorityLow, domain.TicketPriorityMedium},
		{domain.TicketPriorityMedium, domain.TicketPriorityHigh},
		{domain.TicketPriorityHigh, domain.TicketPriorityCritical},
		{domain.TicketPriorityCritical, domain.TicketPriorityCritical},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			ticket := f.ticketWith(t, tt.from, 24)
			escalated, err := f.tickets.EscalateTicket(f.ctx, ticket.ID, "", f.performer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, escalated.Priority)
			assert.Equal(t, domain.TicketStatusInProgress, escalated.Status)

			entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, domain.AuditActionEscalated, entries[1].Action)
			assert.Equal(t, string(tt.from), entries[1].OldValue)
			assert.Equal(t, string(tt.want), entries[1].NewValue)
		})
	}

	t.Run("reason becomes internal comment", func(t *testing.T) {
		ticket := f.openTicket(t)
		_, err := f.tickets.EscalateTicket(f.ctx, ticket.ID, "CEO cannot print", f.performer)
		require.NoError(t, err)

		public, err := f.content.ListComments(f.ctx, ticket.ID, false)
		require.NoError(t, err)
		assert.Empty(t, public)

		all, err := f.content.ListComments(f.ctx, ticket.ID, true)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, all[0].IsInternal)
		assert.Equal(t, "Escalated: CEO cannot print", all[0].Text)
	})

	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		t.Run("blocked when "+string(status), func(t *testing.T) {
			ticket := f.ticketInStatus(t, status)
			_, err := f.tickets.EscalateTicket(f.ctx, ticket.ID, "", f.performer)
			requireKind(t, err, "CONFLICT")

			current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, status, current.Status)
			assert.Equal(t, domain.TicketPriorityMedium, current.Priority)
		})
	}
}

func TestReopenTicket(t *testing.T) {
	f := newFixture(t)

	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		t.Run(string(status), func(t *testing.T) {
			ticket := f.ticketInStatus(t, status)
			reopened, err := f.tickets.ReopenTicket(f.ctx, ticket.ID, "jammed again", f.performer)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketStatusOpen, reopened.Status)
			assert.Nil(t, reopened.ResolvedAt)
			assert.Nil(t, reopened.ClosedAt)
			assert.Nil(t, reopened.ResolutionNote)

			comments, err := f.content.ListComments(f.ctx, ticket.ID, false)
			require.NoError(t, err)
			require.NotEmpty(t, comments)
			assert.Equal(t, "Reopened: jammed again", comments[len(comments)-1].Text)
		})
	}

	t.Run("short reason", func(t *testing.T) {
		ticket := f.ticketInStatus(t, domain.TicketStatusClosed)
		_, err := f.tickets.ReopenTicket(f.ctx, ticket.ID, "bad", f.performer)
		requireKind(t, err, "VALIDATION_FAILED")
	})

	t.Run("not finished", func(t *testing.T) {
		ticket := f.openTicket(t)
		_, err := f.tickets.ReopenTicket(f.ctx, ticket.ID, "jammed again", f.performer)
		requireKind(t, err, "CONFLICT")
	})
}

func TestHoldTicket(t *testing.T) {
	f := newFixture(t)

	for _, status := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress} {
		t.Run(string(status), func(t *testing.T) {
			ticket := f.ticketInStatus(t, status)
			held, err := f.tickets.HoldTicket(f.ctx, ticket.ID, "waiting on vendor", f.performer)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketStatusOnHold, held.Status)
		})
	}

	for _, status := range []domain.TicketStatus{domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed} {
		t.Run("rejected when "+string(status), func(t *testing.T) {
			ticket := f.ticketInStatus(t, status)
			_, err := f.tickets.HoldTicket(f.ctx, ticket.ID, "waiting on vendor", f.performer)
			requireKind(t, err, "CONFLICT")
		})
	}

	t.Run("short reason", func(t *testing.T) {
		ticket := f.openTicket(t)
		_, err := f.tickets.HoldTicket(f.ctx, ticket.ID, "wait", f.performer)
		requireKind(t, err, "VALIDATION_FAILED")
	})
}

func TestEveryActionAppendsExactlyOneAuditEntry(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "agent@example.com", true)
	ticket := f.openTicket(t)
	title := "Printer on 3rd floor not working"

	steps := []struct {
		action domain.AuditAction
		run    func() error
	}{
		{domain.AuditActionAssigned, func() error {
			_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
			return err
		}},
		{domain.AuditActionPriorityChanged, func() error {
			_, err := f.tickets.ChangePriority(f.ctx, ticket.ID, domain.TicketPriorityLow, f.performer)
			return err
		}},
		{domain.AuditActionEscalated, func() error {
			_, err := f.tickets.EscalateTicket(f.ctx, ticket.ID, "blocking payroll", f.performer)
			return err
		}},
		{domain.AuditActionOnHold, func() error {
			_, err := f.tickets.HoldTicket(f.ctx, ticket.ID, "waiting on vendor", f.performer)
			return err
		}},
		{domain.AuditActionUpdated, func() error {
			_, err := f.tickets.UpdateTicket(f.ctx, ticket.ID, TicketUpdateInput{Title: &title}, f.performer)
			return err
		}},
		{domain.AuditActionResolved, func() error {
			_, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "Vendor replaced the tray", f.performer)
			return err
		}},
		{domain.AuditActionClosed, func() error {
			_, err := f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
			return err
		}},
		{domain.AuditActionReopened, func() error {
			_, err := f.tickets.ReopenTicket(f.ctx, ticket.ID, "tray broke again", f.performer)
			return err
		}},
	}

	for i, step := range steps {
		require.NoError(t, step.run(), string(step.action))
		entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, entries, i+2, string(step.action))
		assert.Equal(t, step.action, entries[len(entries)-1].Action)
	}
}

func TestOverdueIsComputedOnRead(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticketWith(t, domain.TicketPriorityHigh, 1)
	assert.False(t, ticket.IsOverdue)

	f.clock.Advance(2 * time.Hour)
	current, err := f.tickets.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, current.IsOverdue)

	listed, err := f.tickets.ListTickets(f.ctx, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsOverdue)

	resolved, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "Replaced the fuser unit", f.performer)
	require.NoError(t, err)
	assert.False(t, resolved.IsOverdue)
}

func TestListTickets_Filters(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "agent@example.com", true)
	first := f.openTicket(t)
	second := f.ticketWith(t, domain.TicketPriorityCritical, 0)
	_, err := f.tickets.AssignAgent(f.ctx, second.ID, agent.ID, f.performer)
	require.NoError(t, err)

	byStatus, err := f.tickets.ListTickets(f.ctx, TicketListFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, first.ID, byStatus[0].ID)

	byAgent, err := f.tickets.ListTickets(f.ctx, TicketListFilter{AssignedAgentID: &agent.ID})
	require.NoError(t, err)
	require.Len(t, byAgent, 1)
	assert.Equal(t, second.ID, byAgent[0].ID)

	term := "00002"
	bySearch, err := f.tickets.ListTickets(f.ctx, TicketListFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, second.ID, bySearch[0].ID)

	_, err = f.tickets.ListTickets(f.ctx, TicketListFilter{Statuses: []domain.TicketStatus{"DONE"}})
	requireKind(t, err, "VALIDATION_FAILED")
}

func TestDeleteTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t)
	_, err := f.content.AddComment(f.ctx, ticket.ID, CommentInput{Text: "Tried turning it off and on"}, f.performer)
	require.NoError(t, err)

	require.NoError(t, f.tickets.DeleteTicket(f.ctx, ticket.ID, f.performer))

	_, err = f.tickets.GetTicket(f.ctx, ticket.ID)
	requireKind(t, err, "NOT_FOUND")

	orphans, err := f.store.Comments().ListByTicket(f.ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	entries, err := f.audit.ListForTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionDeleted, entries[1].Action)
	assert.Equal(t, ticket.TicketNumber, entries[1].OldValue)

	assert.Contains(t, f.published.types(), events.EventTicketDeleted)

	err = f.tickets.DeleteTicket(f.ctx, ticket.ID, f.performer)
	requireKind(t, err, "NOT_FOUND")
}

func TestTransitionsPublishEvents(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t)
	_, err := f.tickets.ResolveTicket(f.ctx, ticket.ID, "Replaced the fuser unit", f.performer)
	require.NoError(t, err)
	_, err = f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
	require.NoError(t, err)
	_, err = f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
	requireKind(t, err, "CONFLICT")

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketResolved,
		events.EventTicketClosed,
	}, f.published.types())

	last := f.published.events[len(f.published.events)-1]
	assert.Equal(t, ticket.ID, last.TicketID)
	payload, ok := last.Payload.(events.TicketChangedPayload)
	require.True(t, ok)
	assert.Equal(t, string(domain.TicketStatusResolved), payload.OldValue)
	assert.Equal(t, domain.TicketStatusClosed, payload.Status)
}
