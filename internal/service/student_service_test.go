package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type mockApplicationRepo struct {
	applications map[string]*models.UniversityApplication
}

func (m *mockApplicationRepo) ListByStudent(_ context.Context, studentID string) ([]models.UniversityApplication, error) {
	out := []models.UniversityApplication{}
	for _, a := range m.applications {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApplicationRepo) FindByID(_ context.Context, id string) (*models.UniversityApplication, error) {
	if a, ok := m.applications[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) Create(_ context.Context, application *models.UniversityApplication) error {
	if application.ID == "" {
		application.ID = "app-next"
	}
	if m.applications == nil {
		m.applications = map[string]*models.UniversityApplication{}
	}
	m.applications[application.ID] = application
	return nil
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus) error {
	if a, ok := m.applications[id]; ok {
		a.Status = status
		return nil
	}
	return sql.ErrNoRows
}

type mockTransactionRepo struct {
	transactions []models.Transaction
}

func (m *mockTransactionRepo) ListByStudent(_ context.Context, studentID string) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for _, tx := range m.transactions {
		if tx.StudentID == studentID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockTransactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	m.transactions = append(m.transactions, *tx)
	return nil
}

type mockNoteRepo struct {
	notes map[string]*models.Note
}

func (m *mockNoteRepo) ListByStudent(_ context.Context, studentID string) ([]models.Note, error) {
	out := []models.Note{}
	for _, n := range m.notes {
		if n.StudentID == studentID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) Create(_ context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = "note-next"
	}
	if m.notes == nil {
		m.notes = map[string]*models.Note{}
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

func fixtureStudent() *models.Student {
	enrolled := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	timeline := models.NewTimeline(enrolled)
	return &models.Student{
		ID:            "CA-MA-UK-26-001",
		Name:          "Karima Akter",
		Phone:         "01722222222",
		Email:         "karima@example.com",
		TargetCountry: "UK",
		Program:       models.ProgramMasters,
		CurrentStatus: timeline.CurrentStatus(),
		Timeline:      timeline,
	}
}

func newStudentFixture() (*StudentService, *mockStudentRepo, *mockApplicationRepo, *mockTransactionRepo, *mockNoteRepo) {
	students := &mockStudentRepo{students: map[string]*models.Student{"CA-MA-UK-26-001": fixtureStudent()}}
	applications := &mockApplicationRepo{}
	transactions := &mockTransactionRepo{}
	notes := &mockNoteRepo{}
	svc := NewStudentService(students, applications, transactions, notes, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc, students, applications, transactions, notes
}

func TestStudentGetAssemblesCaseFile(t *testing.T) {
	svc, _, _, transactions, _ := newStudentFixture()
	transactions.transactions = []models.Transaction{
		{StudentID: "CA-MA-UK-26-001", Type: models.TransactionReceived, Amount: 1000},
		{StudentID: "CA-MA-UK-26-001", Type: models.TransactionPayment, Amount: 300},
		{StudentID: "CA-MA-UK-26-001", Type: models.TransactionRefund, Amount: 50},
		{StudentID: "other", Type: models.TransactionReceived, Amount: 9999},
	}

	detail, err := svc.Get(context.Background(), "CA-MA-UK-26-001")
	require.NoError(t, err)

	assert.Len(t, detail.Transactions, 3)
	assert.Equal(t, 650.0, detail.Balance)
	assert.Equal(t, "File opening", detail.CurrentStatus)
}

func TestStudentToggleStageRederivesStatus(t *testing.T) {
	svc, students, _, _, _ := newStudentFixture()

	updated, err := svc.ToggleStage(context.Background(), "CA-MA-UK-26-001", ToggleStageRequest{Step: "University Application"})
	require.NoError(t, err)
	assert.Equal(t, "University Application", updated.CurrentStatus)

	// The stored record carries the derived status too.
	assert.Equal(t, "University Application", students.students["CA-MA-UK-26-001"].CurrentStatus)
}

func TestStudentToggleUnknownStageKeepsStatus(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	updated, err := svc.ToggleStage(context.Background(), "CA-MA-UK-26-001", ToggleStageRequest{Step: "Not a stage"})
	require.NoError(t, err)
	assert.Equal(t, "File opening", updated.CurrentStatus)
}

func TestStudentAddTransactionRejectsUnknownType(t *testing.T) {
	svc, _, _, transactions, _ := newStudentFixture()

	_, err := svc.AddTransaction(context.Background(), "CA-MA-UK-26-001", AddTransactionRequest{
		Description: "misc",
		Amount:      100,
		Type:        models.TransactionType("Donation"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, transactions.transactions)
}

func TestStudentAddTransactionRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _, transactions, _ := newStudentFixture()

	_, err := svc.AddTransaction(context.Background(), "CA-MA-UK-26-001", AddTransactionRequest{
		Description: "chargeback",
		Amount:      -100,
		Type:        models.TransactionPayment,
	})
	require.Error(t, err)
	assert.Empty(t, transactions.transactions)
}

func TestStudentAddTransactionStampsToday(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	tx, err := svc.AddTransaction(context.Background(), "CA-MA-UK-26-001", AddTransactionRequest{
		Description: "Initial deposit",
		Amount:      1000,
		Type:        models.TransactionReceived,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", tx.Date)
}

func TestStudentApplicationLifecycle(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	app, err := svc.AddApplication(context.Background(), "CA-MA-UK-26-001", AddApplicationRequest{
		UniversityName: "University of Leeds",
		Course:         "MSc Data Science",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)

	updated, err := svc.UpdateApplicationStatus(context.Background(), "CA-MA-UK-26-001", app.ID, UpdateApplicationStatusRequest{
		Status: models.ApplicationOfferConditional,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationOfferConditional, updated.Status)
}

func TestStudentUpdateApplicationStatusChecksOwnership(t *testing.T) {
	svc, _, applications, _, _ := newStudentFixture()
	applications.applications = map[string]*models.UniversityApplication{
		"app-1": {ID: "app-1", StudentID: "someone-else", Status: models.ApplicationPending},
	}

	_, err := svc.UpdateApplicationStatus(context.Background(), "CA-MA-UK-26-001", "app-1", UpdateApplicationStatusRequest{
		Status: models.ApplicationRejected,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentNotFound(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
