package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type mockDashboardRepo struct {
	leads     int
	students  int
	balance   float64
	buildCall int
}

func (m *mockDashboardRepo) CountLeads(_ context.Context) (int, error) {
	m.buildCall++
	return m.leads, nil
}

func (m *mockDashboardRepo) CountStudents(_ context.Context) (int, error) {
	return m.students, nil
}

func (m *mockDashboardRepo) LeadsByStatus(_ context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: "New", Count: m.leads}}, nil
}

func (m *mockDashboardRepo) StudentsByCountry(_ context.Context) ([]models.CountryCount, error) {
	return []models.CountryCount{{Country: "UK", Count: m.students}}, nil
}

func (m *mockDashboardRepo) StudentsByStatus(_ context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: "File opening", Count: m.students}}, nil
}

func (m *mockDashboardRepo) EnrollmentsByMonth(_ context.Context) ([]models.MonthCount, error) {
	return []models.MonthCount{{Month: "2026-09", Count: m.students}}, nil
}

func (m *mockDashboardRepo) TotalBalance(_ context.Context) (float64, error) {
	return m.balance, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = map[string][]byte{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	delete(s.store, pattern)
	return nil
}

func TestDashboardOverviewWithoutCache(t *testing.T) {
	repo := &mockDashboardRepo{leads: 7, students: 3, balance: 1250}
	svc := NewDashboardService(repo, nil, nil, time.Minute, nil)

	overview, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, overview.TotalLeads)
	assert.Equal(t, 3, overview.TotalStudents)
	assert.Equal(t, 1250.0, overview.TotalBalance)
	require.Len(t, overview.EnrollmentsByMonth, 1)
	assert.Equal(t, "2026-09", overview.EnrollmentsByMonth[0].Month)
}

func TestDashboardOverviewServesFromCache(t *testing.T) {
	repo := &mockDashboardRepo{leads: 7, students: 3}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, nil, time.Minute, nil)

	_, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	overview, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, overview.TotalLeads)
	// The aggregate queries ran only once.
	assert.Equal(t, 1, repo.buildCall)
}

func TestDashboardInvalidateDropsCachedOverview(t *testing.T) {
	repo := &mockDashboardRepo{leads: 1}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, nil, time.Minute, nil)

	_, _, err := svc.Overview(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	repo.leads = 2
	overview, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, overview.TotalLeads)
}
