package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuditRecorder appends immutable history entries for ticket changes.
type AuditRecorder struct {
	logs repository.AuditLogRepository
	now  Clock
}

// NewAuditRecorder constructs the recorder. logs serves reads; appends go
// through the repositories of the caller's transaction.
func NewAuditRecorder(logs repository.AuditLogRepository, clock Clock) *AuditRecorder {
	return &AuditRecorder{logs: logs, now: clockOrNow(clock)}
}

// Append writes one entry with a server-assigned timestamp inside repos'
// transaction.
func (a *AuditRecorder) Append(ctx context.Context, repos repository.Repositories, ticketID string, action domain.AuditAction, oldValue, newValue string, performer domain.Performer) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{
		TicketID:    ticketID,
		Action:      action,
		OldValue:    oldValue,
		NewValue:    newValue,
		PerformedBy: performer.Label(),
		Timestamp:   a.now().UTC(),
	}
	if err := repos.AuditLogs().Append(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// ListForTicket returns a ticket's history oldest first. Entries outlive
// their ticket, so a deleted ticket still has a readable trail.
func (a *AuditRecorder) ListForTicket(ctx context.Context, ticketID string) ([]domain.AuditLog, error) {
	if err := requireID("ticket", ticketID); err != nil {
		return nil, err
	}
	entries, err := a.logs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// List returns the global trail newest first.
func (a *AuditRecorder) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	entries, err := a.logs.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
