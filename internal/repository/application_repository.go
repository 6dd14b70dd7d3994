package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// ApplicationRepository manages university applications owned by students.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ListByStudent returns a student's applications.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.UniversityApplication, error) {
	const query = `SELECT id, student_id, university_name, course, status FROM applications WHERE student_id = $1 ORDER BY id ASC`
	var applications []models.UniversityApplication
	if err := r.db.SelectContext(ctx, &applications, query, studentID); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return applications, nil
}

// FindByID fetches one application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.UniversityApplication, error) {
	const query = `SELECT id, student_id, university_name, course, status FROM applications WHERE id = $1`
	var application models.UniversityApplication
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	return &application, nil
}

// Create inserts an application.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.UniversityApplication) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	const query = `INSERT INTO applications (id, student_id, university_name, course, status) VALUES (:id, :student_id, :university_name, :course, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus sets an application's outcome. No transition restrictions.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}
