package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
)

func newLeadMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func leadRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "phone", "email", "target_country", "program", "course", "source", "referral_person", "status", "language_test", "ssc_gpa", "hsc_gpa", "bachelor_cgpa", "masters_gpa", "college_name", "created_at"}).
		AddRow("lead-1", "Rahim Uddin", "01711000000", "rahim@example.com", "UK", "Masters", "MSc Data Science", "Facebook", "", "New",
			[]byte(`{"test_type":"IELTS","score":"7.0"}`),
			"5.00", "5.00", "3.50", "", "NDC", time.Now())
}

func TestLeadRepositoryList(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + leadColumns + " FROM leads WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(leadRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	leads, total, err := repo.List(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.LeadStatusNew, leads[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + leadColumns + " FROM leads WHERE 1=1 AND status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.LeadStatusContacted).
		WillReturnRows(leadRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads WHERE 1=1 AND status = $1")).
		WithArgs(models.LeadStatusContacted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.LeadFilter{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + leadColumns + " FROM leads WHERE id = $1")).
		WithArgs("lead-1").
		WillReturnRows(leadRows())

	lead, err := repo.FindByID(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin", lead.Name)
	assert.Equal(t, models.LanguageTestIELTS, lead.LanguageTest.TestType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + leadColumns + " FROM leads WHERE id = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(1, 1))

	lead := &models.Lead{Name: "Rahim Uddin", Phone: "01711000000", TargetCountry: "UK", Program: models.ProgramMasters, Status: models.LeadStatusNew}
	err := repo.Create(context.Background(), lead)
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status = $2 WHERE id = $1")).
		WithArgs("lead-1", models.LeadStatusContacted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "lead-1", models.LeadStatusContacted)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewLeadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leads WHERE id = $1")).
		WithArgs("lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
