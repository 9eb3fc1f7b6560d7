package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditLogRepository stores audit entries. Entries are append-only, so the
// interface offers no update or delete.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLog, error)
	List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	db DBTX
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db DBTX) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (ticket_id, action, old_value, new_value, performed_by, timestamp)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.OldValue,
		entry.NewValue,
		entry.PerformedBy,
		entry.Timestamp,
	).Scan(&entry.ID)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, ticket_id, action, old_value, new_value, performed_by, timestamp
        FROM audit_logs WHERE ticket_id=$1 ORDER BY timestamp ASC, id ASC`
	return r.query(ctx, query, ticketID)
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	limit, offset = pageBounds(limit, offset, 50)
	query := fmt.Sprintf(`
        SELECT id, ticket_id, action, old_value, new_value, performed_by, timestamp
        FROM audit_logs ORDER BY timestamp DESC LIMIT %d OFFSET %d`, limit, offset)
	return r.query(ctx, query)
}

func (r *auditLogRepository) query(ctx context.Context, query string, args ...any) ([]domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AuditLog{}
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.OldValue,
			&entry.NewValue,
			&entry.PerformedBy,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
