package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// TransactionRepository manages the append-only ledger. Entries are never
// updated and deletion is not exposed.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository constructs a TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByStudent returns a student's ledger in entry order.
func (r *TransactionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Transaction, error) {
	const query = `SELECT id, student_id, date, description, amount, type FROM transactions WHERE student_id = $1 ORDER BY date ASC, id ASC`
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, studentID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// Create appends a ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	const query = `INSERT INTO transactions (id, student_id, date, description, amount, type) VALUES (:id, :student_id, :date, :description, :amount, :type)`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}
