package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestAuditRecorder_List(t *testing.T) {
	f := newFixture(t)
	first := f.openTicket(t)
	f.clock.Advance(time.Minute)
	second := f.openTicket(t)
	_, err := f.tickets.EscalateTicket(f.ctx, second.ID, "", f.performer)
	require.NoError(t, err)

	entries, err := f.audit.List(f.ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.AuditActionEscalated, entries[0].Action)
	assert.Equal(t, second.ID, entries[1].TicketID)
	assert.Equal(t, first.ID, entries[2].TicketID)
	assert.True(t, entries[0].Timestamp.Equal(baseTime.Add(time.Minute)))

	paged, err := f.audit.List(f.ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, first.ID, paged[0].TicketID)

	_, err = f.audit.ListForTicket(f.ctx, "TKT-2026-00001")
	requireKind(t, err, "VALIDATION_FAILED")
}
