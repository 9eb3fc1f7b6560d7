package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// DashboardCache keeps a computed stats snapshot. Get returns nil on a miss.
type DashboardCache interface {
	Get(ctx context.Context) (*domain.DashboardStats, error)
	Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// DashboardService serves read-only ticket aggregates.
type DashboardService struct {
	store    repository.Repositories
	cache    DashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      Clock
}

// DashboardDependencies bundles collaborators for the dashboard.
type DashboardDependencies struct {
	Store    repository.Repositories
	Cache    DashboardCache
	CacheTTL time.Duration
	Logger   *zap.Logger
	Clock    Clock
}

// NewDashboardService constructs the service. A nil cache or zero TTL
// computes stats on every call.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		store:    deps.Store,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
		now:      clockOrNow(deps.Clock),
	}
}

// Stats returns the dashboard aggregate.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.cachingEnabled() {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	now := s.now()
	stats, err := s.store.Tickets().Stats(ctx, now, startOfDay(now))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cachingEnabled() {
		if err := s.cache.Set(ctx, stats, s.snapshotTTL(now)); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// AgentTickets lists an agent's tickets that are not closed, highest
// priority first and oldest first within a priority.
func (s *DashboardService) AgentTickets(ctx context.Context, agentID string) ([]domain.Ticket, error) {
	if err := requireID("agent", agentID); err != nil {
		return nil, err
	}
	if _, err := s.store.Agents().GetByID(ctx, agentID); err != nil {
		return nil, lookupError(err, "agent", agentID)
	}
	tickets, err := s.store.Tickets().ListOpenByAgent(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refreshOverdue(tickets, s.now())
	return tickets, nil
}

// OverdueTickets lists unfinished tickets past their due date, highest
// priority first and earliest due date first within a priority.
func (s *DashboardService) OverdueTickets(ctx context.Context) ([]domain.Ticket, error) {
	now := s.now()
	tickets, err := s.store.Tickets().ListOverdue(ctx, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refreshOverdue(tickets, now)
	return tickets, nil
}

// HandleTicketEvent drops the cached stats after any ticket change.
func (s *DashboardService) HandleTicketEvent(ctx context.Context, _ events.Event) error {
	if !s.cachingEnabled() {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func (s *DashboardService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// snapshotTTL keeps a snapshot from outliving the day its resolvedToday
// count was taken for.
func (s *DashboardService) snapshotTTL(now time.Time) time.Duration {
	untilMidnight := startOfDay(now).AddDate(0, 0, 1).Sub(now)
	if untilMidnight < s.cacheTTL {
		return untilMidnight
	}
	return s.cacheTTL
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
