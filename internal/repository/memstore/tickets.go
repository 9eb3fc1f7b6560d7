package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepository struct {
	sc scope
}

func (r *ticketRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := r.sc.do(ctx, func(d *data) error {
		d.sequences[year]++
		seq = d.sequences[year]
		return nil
	})
	return seq, err
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.sc.do(ctx, func(d *data) error {
		if err := checkTicketRefs(d, ticket); err != nil {
			return err
		}
		for _, t := range d.tickets {
			if t.TicketNumber == ticket.TicketNumber {
				return uniqueViolation("tickets_ticket_number_key")
			}
		}
		ticket.ID = uuid.NewString()
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = r.sc.now()
		}
		ticket.UpdatedAt = ticket.CreatedAt
		stored := *ticket
		stored.IsOverdue = false
		d.tickets[ticket.ID] = stored
		d.track(ticket.ID)
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.sc.do(ctx, func(d *data) error {
		existing, ok := d.tickets[ticket.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkTicketRefs(d, ticket); err != nil {
			return err
		}
		stored := *ticket
		stored.TicketNumber = existing.TicketNumber
		stored.CreatedAt = existing.CreatedAt
		stored.DueDate = existing.DueDate
		stored.UpdatedAt = r.sc.now()
		stored.IsOverdue = false
		d.tickets[ticket.ID] = stored
		return nil
	})
}

func checkTicketRefs(d *data, ticket *domain.Ticket) error {
	if _, ok := d.employees[ticket.ReporterID]; !ok {
		return foreignKeyViolation("tickets_reporter_id_fkey")
	}
	if ticket.CategoryID != nil {
		if _, ok := d.categories[*ticket.CategoryID]; !ok {
			return foreignKeyViolation("tickets_category_id_fkey")
		}
	}
	if ticket.DepartmentID != nil {
		if _, ok := d.departments[*ticket.DepartmentID]; !ok {
			return foreignKeyViolation("tickets_department_id_fkey")
		}
	}
	if ticket.AssignedAgentID != nil {
		if _, ok := d.agents[*ticket.AssignedAgentID]; !ok {
			return foreignKeyViolation("tickets_assigned_agent_id_fkey")
		}
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.sc.do(ctx, func(d *data) error {
		ticket, ok := d.tickets[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &ticket
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no row lock here: transactions already hold the
// store mutex.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.tickets[id]; !ok {
			return pgx.ErrNoRows
		}
		delete(d.tickets, id)
		for cid, c := range d.comments {
			if c.TicketID == id {
				delete(d.comments, cid)
			}
		}
		for aid, a := range d.attachments {
			if a.TicketID == id {
				delete(d.attachments, aid)
			}
		}
		return nil
	})
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, t := range d.tickets {
			if matchesFilter(t, filter) {
				result = append(result, t)
			}
		}
		sort.Slice(result, func(i, j int) bool {
			return d.before(result[j].ID, result[j].CreatedAt, result[i].ID, result[i].CreatedAt)
		})
		return nil
	})
	return page(result, filter.Limit, filter.Offset, 20), err
}

func matchesFilter(t domain.Ticket, filter repository.TicketFilter) bool {
	if !optionalEquals(t.AssignedAgentID, filter.AssignedAgentID) ||
		!optionalEquals(t.CategoryID, filter.CategoryID) ||
		!optionalEquals(t.DepartmentID, filter.DepartmentID) {
		return false
	}
	if filter.ReporterID != nil && t.ReporterID != *filter.ReporterID {
		return false
	}
	if len(filter.Statuses) > 0 && !contains(filter.Statuses, t.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !contains(filter.Priorities, t.Priority) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.TicketNumber), term) {
			return false
		}
	}
	return true
}

func optionalEquals(value, want *string) bool {
	if want == nil {
		return true
	}
	return value != nil && *value == *want
}

func contains[T comparable](items []T, item T) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}

func (r *ticketRepository) ListOpenByAgent(ctx context.Context, agentID string) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, t := range d.tickets {
			if t.AssignedAgentID != nil && *t.AssignedAgentID == agentID && t.Status != domain.TicketStatusClosed {
				result = append(result, t)
			}
		}
		sort.Slice(result, func(i, j int) bool {
			if ri, rj := result[i].Priority.Rank(), result[j].Priority.Rank(); ri != rj {
				return ri > rj
			}
			return d.before(result[i].ID, result[i].CreatedAt, result[j].ID, result[j].CreatedAt)
		})
		return nil
	})
	return result, err
}

func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, t := range d.tickets {
			if t.Overdue(now) {
				result = append(result, t)
			}
		}
		sort.Slice(result, func(i, j int) bool {
			if ri, rj := result[i].Priority.Rank(), result[j].Priority.Rank(); ri != rj {
				return ri > rj
			}
			return d.before(result[i].ID, *result[i].DueDate, result[j].ID, *result[j].DueDate)
		})
		return nil
	})
	return result, err
}

func (r *ticketRepository) Stats(ctx context.Context, now, startOfDay time.Time) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, t := range d.tickets {
			stats.TotalTickets++
			switch t.Status {
			case domain.TicketStatusOpen:
				stats.OpenTickets++
			case domain.TicketStatusInProgress:
				stats.InProgressTickets++
			}
			if t.ResolvedAt != nil && !t.ResolvedAt.Before(startOfDay) {
				stats.ResolvedToday++
			}
			if t.Overdue(now) {
				stats.OverdueTickets++
			}
			if t.Priority == domain.TicketPriorityCritical && t.Status != domain.TicketStatusClosed {
				stats.CriticalTickets++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
