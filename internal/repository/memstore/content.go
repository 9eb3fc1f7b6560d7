package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type commentRepository struct {
	sc scope
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.tickets[comment.TicketID]; !ok {
			return foreignKeyViolation("comments_ticket_id_fkey")
		}
		comment.ID = uuid.NewString()
		comment.CreatedAt = r.sc.now()
		d.comments[comment.ID] = *comment
		d.track(comment.ID)
		return nil
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var out *domain.Comment
	err := r.sc.do(ctx, func(d *data) error {
		comment, ok := d.comments[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &comment
		return nil
	})
	return out, err
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	result := []domain.Comment{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, comment := range d.comments {
			if comment.TicketID != ticketID || (comment.IsInternal && !includeInternal) {
				continue
			}
			result = append(result, comment)
		}
		sort.Slice(result, func(i, j int) bool {
			return d.before(result[i].ID, result[i].CreatedAt, result[j].ID, result[j].CreatedAt)
		})
		return nil
	})
	return result, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.comments[id]; !ok {
			return pgx.ErrNoRows
		}
		delete(d.comments, id)
		return nil
	})
}

type attachmentRepository struct {
	sc scope
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.tickets[attachment.TicketID]; !ok {
			return foreignKeyViolation("attachments_ticket_id_fkey")
		}
		attachment.ID = uuid.NewString()
		attachment.CreatedAt = r.sc.now()
		d.attachments[attachment.ID] = *attachment
		d.track(attachment.ID)
		return nil
	})
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	var out *domain.Attachment
	err := r.sc.do(ctx, func(d *data) error {
		attachment, ok := d.attachments[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &attachment
		return nil
	})
	return out, err
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	result := []domain.Attachment{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, attachment := range d.attachments {
			if attachment.TicketID == ticketID {
				result = append(result, attachment)
			}
		}
		sort.Slice(result, func(i, j int) bool {
			return d.before(result[i].ID, result[i].CreatedAt, result[j].ID, result[j].CreatedAt)
		})
		return nil
	})
	return result, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.attachments[id]; !ok {
			return pgx.ErrNoRows
		}
		delete(d.attachments, id)
		return nil
	})
}

type auditLogRepository struct {
	sc scope
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	return r.sc.do(ctx, func(d *data) error {
		entry.ID = uuid.NewString()
		if entry.Timestamp.IsZero() {
			entry.Timestamp = r.sc.now()
		}
		d.auditLogs = append(d.auditLogs, *entry)
		return nil
	})
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLog, error) {
	result := []domain.AuditLog{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, entry := range d.auditLogs {
			if entry.TicketID == ticketID {
				result = append(result, entry)
			}
		}
		return nil
	})
	return result, err
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	result := []domain.AuditLog{}
	err := r.sc.do(ctx, func(d *data) error {
		for i := len(d.auditLogs) - 1; i >= 0; i-- {
			result = append(result, d.auditLogs[i])
		}
		return nil
	})
	return page(result, limit, offset, 50), err
}
