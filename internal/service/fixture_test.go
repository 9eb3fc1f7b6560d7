package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var baseTime = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx       context.Context
	clock     *testClock
	store     *memstore.Store
	audit     *AuditRecorder
	tickets   *TicketService
	content   *TicketContentService
	directory *DirectoryService
	dashboard *DashboardService
	published *recordedEvents
	performer domain.Performer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{now: baseTime}
	store := memstore.New(memstore.WithClock(clock.Now))
	dispatcher := events.NewInMemoryDispatcher(nil)
	published := &recordedEvents{}
	events.SubscribeTickets(dispatcher, published.handle)

	audit := NewAuditRecorder(store.AuditLogs(), clock.Now)
	return &fixture{
		ctx:       context.Background(),
		clock:     clock,
		store:     store,
		audit:     audit,
		published: published,
		performer: domain.Performer{Name: "Dana Agent", Email: "dana@example.com"},
		tickets: NewTicketService(TicketDependencies{
			Store:      store,
			Audit:      audit,
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		content: NewTicketContentService(ContentDependencies{
			Store:              store,
			Dispatcher:         dispatcher,
			Clock:              clock.Now,
			AttachmentMaxBytes: 1024,
		}),
		directory: NewDirectoryService(store),
		dashboard: NewDashboardService(DashboardDependencies{
			Store: store,
			Clock: clock.Now,
		}),
	}
}

func (f *fixture) department(t *testing.T, name string) *domain.Department {
	t.Helper()
	dept, err := f.directory.CreateDepartment(f.ctx, DepartmentInput{Name: name})
	require.NoError(t, err)
	return dept
}

func (f *fixture) category(t *testing.T, name string, slaHours int) *domain.Category {
	t.Helper()
	category, err := f.directory.CreateCategory(f.ctx, CategoryInput{Name: name, SLAHours: slaHours})
	require.NoError(t, err)
	return category
}

func (f *fixture) employee(t *testing.T, email string, departmentID *string) *domain.Employee {
	t.Helper()
	employee, err := f.directory.CreateEmployee(f.ctx, EmployeeInput{Name: "Reporter " + email, Email: email, DepartmentID: departmentID})
	require.NoError(t, err)
	return employee
}

func (f *fixture) agent(t *testing.T, email string, active bool) *domain.Agent {
	t.Helper()
	agent, err := f.directory.CreateAgent(f.ctx, AgentInput{
		Name:     "Agent " + email,
		Email:    email,
		Role:     domain.AgentRoleL1,
		IsActive: &active,
	})
	require.NoError(t, err)
	return agent
}

// openTicket creates a printer ticket with a 24 hour SLA category.
func (f *fixture) openTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	return f.ticketWith(t, domain.TicketPriorityMedium, 24)
}

func (f *fixture) ticketWith(t *testing.T, priority domain.TicketPriority, slaHours int) *domain.Ticket {
	t.Helper()
	reporter := f.employee(t, uniqueEmail(), nil)
	input := TicketCreateInput{
		Title:       "Printer not working",
		Description: "The office printer on 3rd floor is jammed",
		Priority:    priority,
		ReporterID:  reporter.ID,
	}
	if slaHours > 0 {
		category := f.category(t, fmt.Sprintf("Hardware %d", nextSeq()), slaHours)
		input.CategoryID = &category.ID
	}
	ticket, err := f.tickets.CreateTicket(f.ctx, input, f.performer)
	require.NoError(t, err)
	return ticket
}

// ticketInStatus drives a fresh ticket into status through the public actions.
func (f *fixture) ticketInStatus(t *testing.T, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := f.openTicket(t)
	var err error
	switch status {
	case domain.TicketStatusOpen:
		return ticket
	case domain.TicketStatusInProgress:
		ticket, err = f.tickets.EscalateTicket(f.ctx, ticket.ID, "", f.performer)
	case domain.TicketStatusOnHold:
		ticket, err = f.tickets.HoldTicket(f.ctx, ticket.ID, "waiting for toner", f.performer)
	case domain.TicketStatusResolved:
		ticket, err = f.tickets.ResolveTicket(f.ctx, ticket.ID, "Cleared the paper jam", f.performer)
	case domain.TicketStatusClosed:
		ticket, err = f.tickets.ResolveTicket(f.ctx, ticket.ID, "Cleared the paper jam", f.performer)
		require.NoError(t, err)
		ticket, err = f.tickets.CloseTicket(f.ctx, ticket.ID, f.performer)
	}
	require.NoError(t, err)
	require.Equal(t, status, ticket.Status)
	return ticket
}

func (f *fixture) auditCount(t *testing.T, ticketID string) int {
	t.Helper()
	entries, err := f.audit.ListForTicket(f.ctx, ticketID)
	require.NoError(t, err)
	return len(entries)
}

var fixtureSeq struct {
	sync.Mutex
	n int
}

func nextSeq() int {
	fixtureSeq.Lock()
	defer fixtureSeq.Unlock()
	fixtureSeq.n++
	return fixtureSeq.n
}

func uniqueEmail() string {
	return fmt.Sprintf("user%d@example.com", nextSeq())
}

func requireKind(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.IsKind(err, code), "expected %s, got %v", code, err)
}
