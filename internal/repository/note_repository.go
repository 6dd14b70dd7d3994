package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// NoteRepository manages case-file notes. Notes can be added and removed
// but never edited.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByStudent returns a student's notes, newest first.
func (r *NoteRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Note, error) {
	const query = `SELECT id, student_id, text, created_at FROM notes WHERE student_id = $1 ORDER BY created_at DESC, id DESC`
	var notes []models.Note
	if err := r.db.SelectContext(ctx, &notes, query, studentID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Create appends a note.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	const query = `INSERT INTO notes (id, student_id, text, created_at) VALUES (:id, :student_id, :text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Delete removes a note.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
