package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// LeadRepository manages persistence for prospective applicants.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs a LeadRepository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, name, phone, email, target_country, program, course, source, referral_person, status, language_test, ssc_gpa, hsc_gpa, bachelor_cgpa, masters_gpa, college_name, created_at`

// List returns leads matching the provided filters.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	base := "FROM leads WHERE 1=1"
	var args []interface{}

	if filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		base += fmt.Sprintf(" AND source = $%d", len(args)+1)
		args = append(args, filter.Source)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "created_at": true, "status": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", leadColumns, base, sortBy, order, size, offset)

	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	return leads, total, nil
}

// FindByID fetches a lead by identifier.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM leads WHERE id = $1", leadColumns)
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO leads (id, name, phone, email, target_country, program, course, source, referral_person, status, language_test, ssc_gpa, hsc_gpa, bachelor_cgpa, masters_gpa, college_name, created_at)
        VALUES (:id, :name, :phone, :email, :target_country, :program, :course, :source, :referral_person, :status, :language_test, :ssc_gpa, :hsc_gpa, :bachelor_cgpa, :masters_gpa, :college_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// UpdateStatus changes a lead's contact status.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE leads SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

// Delete removes a lead permanently. Conversion consumes leads through this.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leads WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}
