package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// StudentRepository manages persistence for enrolled case files.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, name, phone, email, target_country, program, current_status, source, referral_person, agent_name, enrollment_date, address, language_test, ssc_gpa, hsc_gpa, bachelor_cgpa, masters_gpa, college_name, timeline, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var args []interface{}

	if filter.Country != "" {
		base += fmt.Sprintf(" AND target_country = $%d", len(args)+1)
		args = append(args, filter.Country)
	}
	if filter.AgentName != "" {
		base += fmt.Sprintf(" AND agent_name = $%d", len(args)+1)
		args = append(args, filter.AgentName)
	}
	if filter.Status != "" {
		base += fmt.Sprintf(" AND current_status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(id) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "enrollment_date": true, "created_at": true, "current_status": true}
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, sortBy, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student row by case identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Count returns the number of stored students. The enrollment service uses
// this snapshot for identifier serials.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// Create inserts a new student case file.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, phone, email, target_country, program, current_status, source, referral_person, agent_name, enrollment_date, address, language_test, ssc_gpa, hsc_gpa, bachelor_cgpa, masters_gpa, college_name, timeline, created_at, updated_at)
        VALUES (:id, :name, :phone, :email, :target_country, :program, :current_status, :source, :referral_person, :agent_name, :enrollment_date, :address, :language_test, :ssc_gpa, :hsc_gpa, :bachelor_cgpa, :masters_gpa, :college_name, :timeline, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Upsert replaces the full student record, matching the storage
// collaborator's full-record-upsert semantics.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = student.UpdatedAt
	}
	const query = `INSERT INTO students (id, name, phone, email, target_country, program, current_status, source, referral_person, agent_name, enrollment_date, address, language_test, ssc_gpa, hsc_gpa, bachelor_cgpa, masters_gpa, college_name, timeline, created_at, updated_at)
        VALUES (:id, :name, :phone, :email, :target_country, :program, :current_status, :source, :referral_person, :agent_name, :enrollment_date, :address, :language_test, :ssc_gpa, :hsc_gpa, :bachelor_cgpa, :masters_gpa, :college_name, :timeline, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name, phone = EXCLUDED.phone, email = EXCLUDED.email,
            target_country = EXCLUDED.target_country, program = EXCLUDED.program,
            current_status = EXCLUDED.current_status, source = EXCLUDED.source,
            referral_person = EXCLUDED.referral_person, agent_name = EXCLUDED.agent_name,
            enrollment_date = EXCLUDED.enrollment_date, address = EXCLUDED.address,
            language_test = EXCLUDED.language_test, ssc_gpa = EXCLUDED.ssc_gpa,
            hsc_gpa = EXCLUDED.hsc_gpa, bachelor_cgpa = EXCLUDED.bachelor_cgpa,
            masters_gpa = EXCLUDED.masters_gpa, college_name = EXCLUDED.college_name,
            timeline = EXCLUDED.timeline, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// Delete removes a student and its owned collections in one transaction.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin student delete tx: %w", err)
	}
	for _, table := range []string{"applications", "transactions", "notes"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE student_id = $1", table), id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete student %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit student delete: %w", err)
	}
	return nil
}
