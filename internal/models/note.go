package models

// Note is a free-text remark on a student's case file. Notes are append-only
// in practice: deletion is exposed, editing is not. CreatedAt is stored
// display-formatted and never parsed.
type Note struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"-"`
	Text      string `db:"text" json:"text"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
