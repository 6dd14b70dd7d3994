package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/pkg/storage"
)

// pagingStudentRepo honors Page/PageSize so the CSV export's page walk is
// exercised against more rows than one page holds.
type pagingStudentRepo struct {
	students []models.Student
}

func (m *pagingStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	start := (filter.Page - 1) * filter.PageSize
	if start < 0 || start >= len(m.students) {
		return nil, len(m.students), nil
	}
	end := start + filter.PageSize
	if end > len(m.students) {
		end = len(m.students)
	}
	return m.students[start:end], len(m.students), nil
}

func (m *pagingStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *pagingStudentRepo) Count(_ context.Context) (int, error) {
	return len(m.students), nil
}

func (m *pagingStudentRepo) Create(_ context.Context, student *models.Student) error {
	m.students = append(m.students, *student)
	return nil
}

func (m *pagingStudentRepo) Upsert(_ context.Context, student *models.Student) error {
	for i := range m.students {
		if m.students[i].ID == student.ID {
			m.students[i] = *student
			return nil
		}
	}
	m.students = append(m.students, *student)
	return nil
}

func (m *pagingStudentRepo) Delete(_ context.Context, id string) error {
	for i := range m.students {
		if m.students[i].ID == id {
			m.students = append(m.students[:i], m.students[i+1:]...)
			return nil
		}
	}
	return nil
}

func exportFixtureStudents(n int) []models.Student {
	enrolled := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	students := make([]models.Student, 0, n)
	for i := 1; i <= n; i++ {
		timeline := models.NewTimeline(enrolled)
		students = append(students, models.Student{
			ID:             fmt.Sprintf("CA-MA-UK-26-%03d", i),
			Name:           fmt.Sprintf("Student %d", i),
			Phone:          "01711000000",
			Email:          fmt.Sprintf("student%d@example.com", i),
			TargetCountry:  "UK",
			Program:        models.ProgramMasters,
			CurrentStatus:  timeline.CurrentStatus(),
			AgentName:      "Self",
			Source:         "Facebook",
			EnrollmentDate: "2026-01-10",
			Timeline:       timeline,
		})
	}
	return students
}

func newExportFixture(t *testing.T, studentCount int) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewArchiveStore(dir)
	require.NoError(t, err)
	signer := storage.NewShareSigner("secret", time.Hour)

	students := &pagingStudentRepo{students: exportFixtureStudents(studentCount)}
	studentSvc := NewStudentService(students, &mockApplicationRepo{}, &mockTransactionRepo{}, &mockNoteRepo{}, nil, nil)
	settingsSvc := NewSettingsService(&mockSettingsRepo{}, nil, nil, models.Branding{Name: "Cholo Abroad"})

	return NewExportService(studentSvc, settingsSvc, store, signer, zap.NewNop()), dir
}

func TestExportStudentsCSVWalksEveryPage(t *testing.T) {
	svc, _ := newExportFixture(t, 150)

	data, err := svc.StudentsCSV(context.Background(), models.StudentFilter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	// Header plus one row per student, across both pages.
	require.Len(t, records, 151)
	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "CA-MA-UK-26-001", records[1][0])
	assert.Equal(t, "CA-MA-UK-26-150", records[150][0])
	assert.Equal(t, "File opening", records[1][6])
}

func TestExportCaseFilePDF(t *testing.T) {
	svc, _ := newExportFixture(t, 1)

	data, filename, err := svc.CaseFilePDF(context.Background(), "CA-MA-UK-26-001")
	require.NoError(t, err)
	assert.Equal(t, "CA-MA-UK-26-001-case-file.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportShareCaseFileRoundTrip(t *testing.T) {
	svc, _ := newExportFixture(t, 1)

	link, err := svc.ShareCaseFile(context.Background(), "CA-MA-UK-26-001")
	require.NoError(t, err)
	require.NotEmpty(t, link.Token)
	assert.True(t, link.ExpiresAt.After(time.Now()))

	data, filename, err := svc.Download(link.Token)
	require.NoError(t, err)
	assert.Equal(t, "CA-MA-UK-26-001-case-file.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportFixture(t, 1)

	link, err := svc.ShareCaseFile(context.Background(), "CA-MA-UK-26-001")
	require.NoError(t, err)

	_, _, err = svc.Download(link.Token + "x")
	assert.Error(t, err)
	_, _, err = svc.Download("not-a-token")
	assert.Error(t, err)
}

func TestExportArchivesRenderedDocuments(t *testing.T) {
	svc, dir := newExportFixture(t, 3)
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := svc.StudentsCSV(context.Background(), models.StudentFilter{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(filepath.Join(dir, "csv"))
		return err == nil && len(entries) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestExportDownloadMissingArchive(t *testing.T) {
	svc, dir := newExportFixture(t, 1)

	link, err := svc.ShareCaseFile(context.Background(), "CA-MA-UK-26-001")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "shared")))

	_, _, err = svc.Download(link.Token)
	assert.Error(t, err)
}
