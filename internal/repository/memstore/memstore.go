// Package memstore keeps the whole helpdesk data set in process memory. It
// backs the service when no Postgres DSN is configured and gives tests a
// store with the same contract as the pgx repositories, including
// constraint errors reported as *pgconn.PgError.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type data struct {
	departments map[string]domain.Department
	categories  map[string]domain.Category
	employees   map[string]domain.Employee
	agents      map[string]domain.Agent
	tickets     map[string]domain.Ticket
	comments    map[string]domain.Comment
	attachments map[string]domain.Attachment
	auditLogs   []domain.AuditLog
	sequences   map[int]int64
	// inserted orders rows sharing a timestamp by insertion.
	inserted map[string]int64
	serial   int64
}

func newData() *data {
	return &data{
		departments: map[string]domain.Department{},
		categories:  map[string]domain.Category{},
		employees:   map[string]domain.Employee{},
		agents:      map[string]domain.Agent{},
		tickets:     map[string]domain.Ticket{},
		comments:    map[string]domain.Comment{},
		attachments: map[string]domain.Attachment{},
		sequences:   map[int]int64{},
		inserted:    map[string]int64{},
	}
}

func (d *data) track(id string) {
	d.serial++
	d.inserted[id] = d.serial
}

func (d *data) before(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return d.inserted[idA] < d.inserted[idB]
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.departments {
		c.departments[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.employees {
		c.employees[k] = v
	}
	for k, v := range d.agents {
		c.agents[k] = v
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.attachments {
		c.attachments[k] = v
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	for k, v := range d.inserted {
		c.inserted[k] = v
	}
	c.serial = d.serial
	c.auditLogs = append([]domain.AuditLog(nil), d.auditLogs...)
	return c
}

// Store is an in-memory repository.Store. Transactions serialize on a single
// mutex and roll back by restoring a snapshot.
type Store struct {
	mu    sync.Mutex
	state *data
	now   func() time.Time
	repos *scopedRepositories
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{state: newData(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.repos = newScopedRepositories(scope{store: s})
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Departments() repository.DepartmentRepository { return s.repos.departments }
func (s *Store) Categories() repository.CategoryRepository { return s.repos.categories }
func (s *Store) Employees() repository.EmployeeRepository { return s.repos.employees }
func (s *Store) Agents() repository.AgentRepository { return s.repos.agents }
func (s *Store) Tickets() repository.TicketRepository { return s.repos.tickets }
func (s *Store) Comments() repository.CommentRepository { return s.repos.comments }
func (s *Store) Attachments() repository.AttachmentRepository { return s.repos.attachments }
func (s *Store) AuditLogs() repository.AuditLogRepository { return s.repos.auditLogs }

// WithinTx runs fn with exclusive access, discarding its writes on error.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.state.clone()
	if err := fn(newScopedRepositories(scope{store: s, held: true})); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// scope runs operations against the store state, taking the lock unless the
// caller already holds it inside WithinTx.
type scope struct {
	store *Store
	held  bool
}

func (sc scope) do(ctx context.Context, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !sc.held {
		sc.store.mu.Lock()
		defer sc.store.mu.Unlock()
	}
	return fn(sc.store.state)
}

func (sc scope) now() time.Time {
	return sc.store.now()
}

type scopedRepositories struct {
	departments *departmentRepository
	categories  *categoryRepository
	employees   *employeeRepository
	agents      *agentRepository
	tickets     *ticketRepository
	comments    *commentRepository
	attachments *attachmentRepository
	auditLogs   *auditLogRepository
}

func newScopedRepositories(sc scope) *scopedRepositories {
	return &scopedRepositories{
		departments: &departmentRepository{sc: sc},
		categories:  &categoryRepository{sc: sc},
		employees:   &employeeRepository{sc: sc},
		agents:      &agentRepository{sc: sc},
		tickets:     &ticketRepository{sc: sc},
		comments:    &commentRepository{sc: sc},
		attachments: &attachmentRepository{sc: sc},
		auditLogs:   &auditLogRepository{sc: sc},
	}
}

func (r *scopedRepositories) Departments() repository.DepartmentRepository { return r.departments }
func (r *scopedRepositories) Categories() repository.CategoryRepository { return r.categories }
func (r *scopedRepositories) Employees() repository.EmployeeRepository { return r.employees }
func (r *scopedRepositories) Agents() repository.AgentRepository { return r.agents }
func (r *scopedRepositories) Tickets() repository.TicketRepository { return r.tickets }
func (r *scopedRepositories) Comments() repository.CommentRepository { return r.comments }
func (r *scopedRepositories) Attachments() repository.AttachmentRepository { return r.attachments }
func (r *scopedRepositories) AuditLogs() repository.AuditLogRepository { return r.auditLogs }

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", Message: "foreign key violation", ConstraintName: constraint}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value", ConstraintName: constraint}
}

func page[T any](items []T, limit, offset, fallback int) []T {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
