package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountLeads returns the total number of stored leads.
func (r *DashboardRepository) CountLeads(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM leads`); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// CountStudents returns the total number of enrolled students.
func (r *DashboardRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// LeadsByStatus groups leads by contact status.
func (r *DashboardRepository) LeadsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM leads GROUP BY status ORDER BY count DESC`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("leads by status: %w", err)
	}
	return counts, nil
}

// StudentsByCountry groups students by target country.
func (r *DashboardRepository) StudentsByCountry(ctx context.Context) ([]models.CountryCount, error) {
	const query = `SELECT target_country AS country, COUNT(*) AS count FROM students GROUP BY target_country ORDER BY count DESC`
	var counts []models.CountryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("students by country: %w", err)
	}
	return counts, nil
}

// StudentsByStatus groups students by their derived pipeline status.
func (r *DashboardRepository) StudentsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT current_status AS status, COUNT(*) AS count FROM students GROUP BY current_status ORDER BY count DESC`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("students by status: %w", err)
	}
	return counts, nil
}

// EnrollmentsByMonth buckets enrollments by calendar month. Enrollment dates
// are stored as YYYY-MM-DD text, so the month is a prefix.
func (r *DashboardRepository) EnrollmentsByMonth(ctx context.Context) ([]models.MonthCount, error) {
	const query = `SELECT SUBSTRING(enrollment_date FROM 1 FOR 7) AS month, COUNT(*) AS count
        FROM students GROUP BY month ORDER BY month`
	var counts []models.MonthCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("enrollments by month: %w", err)
	}
	return counts, nil
}

// TotalBalance sums the agency-wide ledger: received money minus payments
// and refunds across every student.
func (r *DashboardRepository) TotalBalance(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(CASE WHEN type = $1 THEN amount ELSE -amount END), 0) FROM transactions`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, models.TransactionReceived); err != nil {
		return 0, fmt.Errorf("total balance: %w", err)
	}
	return total, nil
}
