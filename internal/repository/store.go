package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both the pool and an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories exposes every entity repository bound to one connection scope.
type Repositories interface {
	Departments() DepartmentRepository
	Categories() CategoryRepository
	Employees() EmployeeRepository
	Agents() AgentRepository
	Tickets() TicketRepository
	Comments() CommentRepository
	Attachments() AttachmentRepository
	AuditLogs() AuditLogRepository
}

// Store is the unit of work. Reads may use the embedded repositories
// directly; writes that must land together go through WithinTx.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// IsForeignKeyViolation reports whether err came from a broken reference.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsUniqueViolation reports whether err came from a duplicate key.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type repositories struct {
	departments DepartmentRepository
	categories  CategoryRepository
	employees   EmployeeRepository
	agents      AgentRepository
	tickets     TicketRepository
	comments    CommentRepository
	attachments AttachmentRepository
	auditLogs   AuditLogRepository
}

func newRepositories(db DBTX) *repositories {
	return &repositories{
		departments: NewDepartmentRepository(db),
		categories:  NewCategoryRepository(db),
		employees:   NewEmployeeRepository(db),
		agents:      NewAgentRepository(db),
		tickets:     NewTicketRepository(db),
		comments:    NewCommentRepository(db),
		attachments: NewAttachmentRepository(db),
		auditLogs:   NewAuditLogRepository(db),
	}
}

func (r *repositories) Departments() DepartmentRepository { return r.departments }
func (r *repositories) Categories() CategoryRepository { return r.categories }
func (r *repositories) Employees() EmployeeRepository { return r.employees }
func (r *repositories) Agents() AgentRepository { return r.agents }
func (r *repositories) Tickets() TicketRepository { return r.tickets }
func (r *repositories) Comments() CommentRepository { return r.comments }
func (r *repositories) Attachments() AttachmentRepository { return r.attachments }
func (r *repositories) AuditLogs() AuditLogRepository { return r.auditLogs }

type postgresStore struct {
	*repositories
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{repositories: newRepositories(pool), pool: pool}
}

// WithinTx runs fn inside a single transaction, committing on success.
func (s *postgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}
