package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

type fakeDashboardCache struct {
	stats       *domain.DashboardStats
	ttl         time.Duration
	sets        int
	invalidated int
	getErr      error
}

func (c *fakeDashboardCache) Get(context.Context) (*domain.DashboardStats, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.stats == nil {
		return nil, nil
	}
	copied := *c.stats
	return &copied, nil
}

func (c *fakeDashboardCache) Set(_ context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	copied := *stats
	c.stats = &copied
	c.ttl = ttl
	c.sets++
	return nil
}

func (c *fakeDashboardCache) Invalidate(context.Context) error {
	c.stats = nil
	c.invalidated++
	return nil
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "agent@example.com", true)

	critical := f.ticketWith(t, domain.TicketPriorityCritical, 1)
	assigned := f.openTicket(t)
	_, err := f.tickets.AssignAgent(f.ctx, assigned.ID, agent.ID, f.performer)
	require.NoError(t, err)
	f.ticketInStatus(t, domain.TicketStatusResolved)
	f.ticketInStatus(t, domain.TicketStatusClosed)

	f.clock.Advance(2 * time.Hour)
	stats, err := f.dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{
		TotalTickets:      4,
		OpenTickets:       1,
		InProgressTickets: 1,
		ResolvedToday:     2,
		OverdueTickets:    1,
		CriticalTickets:   1,
	}, *stats)

	t.Run("resolved yesterday does not count", func(t *testing.T) {
		f.clock.Advance(24 * time.Hour)
		stats, err := f.dashboard.Stats(f.ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.ResolvedToday)
		assert.EqualValues(t, 2, stats.OverdueTickets)
	})

	t.Run("closed critical is not counted", func(t *testing.T) {
		_, err := f.tickets.ResolveTicket(f.ctx, critical.ID, "Swapped the failing disk", f.performer)
		require.NoError(t, err)
		stats, err := f.dashboard.Stats(f.ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.CriticalTickets)

		_, err = f.tickets.CloseTicket(f.ctx, critical.ID, f.performer)
		require.NoError(t, err)
		stats, err = f.dashboard.Stats(f.ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.CriticalTickets)
	})
}

func TestDashboardStats_Cache(t *testing.T) {
	f := newFixture(t)
	cache := &fakeDashboardCache{}
	dashboard := NewDashboardService(DashboardDependencies{
		Store:    f.store,
		Cache:    cache,
		CacheTTL: 30 * time.Second,
		Clock:    f.clock.Now,
	})

	f.openTicket(t)
	first, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.TotalTickets)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 30*time.Second, cache.ttl)

	f.openTicket(t)
	cached, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cached.TotalTickets)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, dashboard.HandleTicketEvent(f.ctx, events.Event{Type: events.EventTicketCreated}))
	assert.Equal(t, 1, cache.invalidated)

	fresh, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.TotalTickets)

	cache.getErr = errors.New("connection refused")
	fallback, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fallback.TotalTickets)
}

func TestDashboardStats_CacheExpiresAtMidnight(t *testing.T) {
	f := newFixture(t)
	cache := &fakeDashboardCache{}
	dashboard := NewDashboardService(DashboardDependencies{
		Store:    f.store,
		Cache:    cache,
		CacheTTL: 5 * time.Minute,
		Clock:    f.clock.Now,
	})

	f.clock.Advance(14*time.Hour + 29*time.Minute + 50*time.Second)
	_, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cache.ttl)
}

func TestDashboardStats_ZeroTTLSkipsCache(t *testing.T) {
	f := newFixture(t)
	cache := &fakeDashboardCache{}
	dashboard := NewDashboardService(DashboardDependencies{Store: f.store, Cache: cache, Clock: f.clock.Now})

	_, err := dashboard.Stats(f.ctx)
	require.NoError(t, err)
	require.NoError(t, dashboard.HandleTicketEvent(f.ctx, events.Event{}))
	assert.Zero(t, cache.sets)
	assert.Zero(t, cache.invalidated)
}

func TestAgentTickets(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "agent@example.com", true)

	low := f.ticketWith(t, domain.TicketPriorityLow, 24)
	critical := f.ticketWith(t, domain.TicketPriorityCritical, 24)
	olderHigh := f.ticketWith(t, domain.TicketPriorityHigh, 24)
	f.clock.Advance(time.Minute)
	newerHigh := f.ticketWith(t, domain.TicketPriorityHigh, 24)
	done := f.openTicket(t)
	other := f.openTicket(t)

	for _, ticket := range []*domain.Ticket{newerHigh, low, critical, olderHigh, done} {
		_, err := f.tickets.AssignAgent(f.ctx, ticket.ID, agent.ID, f.performer)
		require.NoError(t, err)
	}
	_, err := f.tickets.ResolveTicket(f.ctx, done.ID, "Cleared the paper jam", f.performer)
	require.NoError(t, err)
	_, err = f.tickets.CloseTicket(f.ctx, done.ID, f.performer)
	require.NoError(t, err)

	tickets, err := f.dashboard.AgentTickets(f.ctx, agent.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	assert.Equal(t, []string{critical.ID, olderHigh.ID, newerHigh.ID, low.ID}, ids)
	assert.NotContains(t, ids, other.ID)

	_, err = f.dashboard.AgentTickets(f.ctx, uuid.NewString())
	requireKind(t, err, "NOT_FOUND")
}

func TestOverdueTickets(t *testing.T) {
	f := newFixture(t)

	medium := f.ticketWith(t, domain.TicketPriorityMedium, 1)
	highLate := f.ticketWith(t, domain.TicketPriorityHigh, 3)
	highEarly := f.ticketWith(t, domain.TicketPriorityHigh, 2)
	f.ticketWith(t, domain.TicketPriorityCritical, 48)
	resolved := f.ticketWith(t, domain.TicketPriorityCritical, 1)
	_, err := f.tickets.ResolveTicket(f.ctx, resolved.ID, "Rebooted the switch", f.performer)
	require.NoError(t, err)

	f.clock.Advance(4 * time.Hour)
	overdue, err := f.dashboard.OverdueTickets(f.ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 3)
	assert.Equal(t, highEarly.ID, overdue[0].ID)
	assert.Equal(t, highLate.ID, overdue[1].ID)
	assert.Equal(t, medium.ID, overdue[2].ID)
	for _, ticket := range overdue {
		assert.True(t, ticket.IsOverdue)
	}
}
