package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
)

func newSettingsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingsRepositoryList(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow(models.SettingBranding, []byte(`{"name":"Cholo Abroad","logo_url":""}`), time.Now()).
		AddRow(models.SettingCountries, []byte(`["UK","Canada"]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, updated_at FROM settings ORDER BY key ASC")).
		WillReturnRows(rows)

	settings, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, models.SettingBranding, settings[0].Key)

	var countries []string
	require.NoError(t, json.Unmarshal(settings[1].Value, &countries))
	assert.Equal(t, []string{"UK", "Canada"}, countries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, updated_at FROM settings WHERE key = $1")).
		WithArgs(models.SettingCounselors).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow(models.SettingCounselors, []byte(`["Nabila","Karim"]`), time.Now()))

	setting, err := repo.Get(context.Background(), models.SettingCounselors)
	require.NoError(t, err)
	assert.Equal(t, models.SettingCounselors, setting.Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, updated_at FROM settings WHERE key = $1")).
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	setting := &models.Setting{Key: models.SettingSources, Value: json.RawMessage(`["Facebook","Walk-in"]`)}
	err := repo.Upsert(context.Background(), setting)
	require.NoError(t, err)
	assert.False(t, setting.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
