package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cholo-abroad/crm-api/internal/models"
)

// SettingsRepository persists the key/value configuration entries
// (branding plus the four name lists). Values are JSON documents replaced
// wholesale on every write.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// List returns every stored setting.
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	const query = `SELECT key, value, updated_at FROM settings ORDER BY key ASC`
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Get fetches a single setting by key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, value, updated_at FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert replaces a setting's full value.
func (r *SettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO settings (key, value, updated_at) VALUES (:key, :value, :updated_at)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
