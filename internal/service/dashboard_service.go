package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type dashboardRepository interface {
	CountLeads(ctx context.Context) (int, error)
	CountStudents(ctx context.Context) (int, error)
	LeadsByStatus(ctx context.Context) ([]models.StatusCount, error)
	StudentsByCountry(ctx context.Context) ([]models.CountryCount, error)
	StudentsByStatus(ctx context.Context) ([]models.StatusCount, error)
	EnrollmentsByMonth(ctx context.Context) ([]models.MonthCount, error)
	TotalBalance(ctx context.Context) (float64, error)
}

// DashboardCacheKey is the cache entry holding the aggregated overview.
// Mutating services invalidate it so the landing page never serves data
// older than the cache TTL after a write.
const DashboardCacheKey = "dashboard:overview"

// DashboardService aggregates the landing-page numbers, caching the result
// because every query is a full-table scan.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Overview returns the aggregated dashboard, serving from cache when a
// fresh copy exists. The boolean reports whether the cache answered.
func (s *DashboardService) Overview(ctx context.Context) (*models.DashboardOverview, bool, error) {
	var cached models.DashboardOverview
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, DashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	overview, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, DashboardCacheKey, overview, s.ttl); err != nil {
			s.logger.Warn("failed to cache dashboard overview", zap.Error(err))
		}
	}
	return overview, false, nil
}

// Invalidate drops the cached overview. Called after writes that change
// the aggregates.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, DashboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// SystemMetrics reports the runtime counters snapshot.
func (s *DashboardService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *DashboardService) build(ctx context.Context) (*models.DashboardOverview, error) {
	overview := &models.DashboardOverview{}
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveDBQuery("dashboard_overview", time.Since(start))
		}
	}()

	var err error
	if overview.TotalLeads, err = s.repo.CountLeads(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leads")
	}
	if overview.TotalStudents, err = s.repo.CountStudents(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if overview.LeadsByStatus, err = s.repo.LeadsByStatus(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group leads")
	}
	if overview.StudentsByCountry, err = s.repo.StudentsByCountry(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group students by country")
	}
	if overview.StudentsByStatus, err = s.repo.StudentsByStatus(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group students by status")
	}
	if overview.EnrollmentsByMonth, err = s.repo.EnrollmentsByMonth(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bucket enrollments")
	}
	if overview.TotalBalance, err = s.repo.TotalBalance(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum balances")
	}
	return overview, nil
}
