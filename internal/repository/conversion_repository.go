package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// ConversionRepository stores compensating-action records for lead→student
// conversions whose lead deletion failed mid-flight.
type ConversionRepository struct {
	db *sqlx.DB
}

// NewConversionRepository constructs the repository.
func NewConversionRepository(db *sqlx.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Create records a conversion log entry.
func (r *ConversionRepository) Create(ctx context.Context, log *models.ConversionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO conversion_logs (id, lead_id, student_id, status, created_at, resolved_at)
        VALUES (:id, :lead_id, :student_id, :status, :created_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create conversion log: %w", err)
	}
	return nil
}

// ListPending returns unresolved entries awaiting lead deletion.
func (r *ConversionRepository) ListPending(ctx context.Context) ([]models.ConversionLog, error) {
	const query = `SELECT id, lead_id, student_id, status, created_at, resolved_at FROM conversion_logs WHERE status = $1 ORDER BY created_at ASC`
	var logs []models.ConversionLog
	if err := r.db.SelectContext(ctx, &logs, query, models.ConversionPendingLeadDelete); err != nil {
		return nil, fmt.Errorf("list pending conversions: %w", err)
	}
	return logs, nil
}

// MarkResolved stamps an entry as compensated.
func (r *ConversionRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	const query = `UPDATE conversion_logs SET status = $2, resolved_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ConversionResolved, resolvedAt); err != nil {
		return fmt.Errorf("resolve conversion log: %w", err)
	}
	return nil
}
