package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]*models.Student
	count     int
	created   []*models.Student
	createErr error
}

func (m *mockStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Count(_ context.Context) (int, error) {
	return m.count, nil
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.students == nil {
		m.students = map[string]*models.Student{}
	}
	m.students[student.ID] = student
	m.created = append(m.created, student)
	return nil
}

func (m *mockStudentRepo) Upsert(_ context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = map[string]*models.Student{}
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

type mockLeadRepo struct {
	leads      map[string]*models.Lead
	deleteErr  error
	deletedIDs []string
}

func (m *mockLeadRepo) List(_ context.Context, _ models.LeadFilter) ([]models.Lead, int, error) {
	out := make([]models.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *mockLeadRepo) FindByID(_ context.Context, id string) (*models.Lead, error) {
	if l, ok := m.leads[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeadRepo) Create(_ context.Context, lead *models.Lead) error {
	if m.leads == nil {
		m.leads = map[string]*models.Lead{}
	}
	m.leads[lead.ID] = lead
	return nil
}

func (m *mockLeadRepo) UpdateStatus(_ context.Context, id string, status models.LeadStatus) error {
	if l, ok := m.leads[id]; ok {
		l.Status = status
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockLeadRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	delete(m.leads, id)
	return nil
}

type mockConversionRepo struct {
	logs     []*models.ConversionLog
	resolved []string
}

func (m *mockConversionRepo) Create(_ context.Context, log *models.ConversionLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockConversionRepo) ListPending(_ context.Context) ([]models.ConversionLog, error) {
	out := make([]models.ConversionLog, 0, len(m.logs))
	for _, l := range m.logs {
		if l.Status == models.ConversionPendingLeadDelete {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockConversionRepo) MarkResolved(_ context.Context, id string, _ time.Time) error {
	m.resolved = append(m.resolved, id)
	for _, l := range m.logs {
		if l.ID == id {
			l.Status = models.ConversionResolved
		}
	}
	return nil
}

func fixtureLead() *models.Lead {
	return &models.Lead{
		ID:            "lead-1",
		Name:          "Rahim Uddin",
		Phone:         "01711111111",
		Email:         "rahim@example.com",
		TargetCountry: "UK",
		Program:       models.ProgramMasters,
		Source:        "Facebook",
		Status:        models.LeadStatusContacted,
		LanguageTest:  models.LanguageTestInfo{TestType: models.LanguageTestIELTS, Score: "7.0"},
	}
}

func newEnrollmentFixture(students *mockStudentRepo, leads *mockLeadRepo, conversions *mockConversionRepo) *EnrollmentService {
	svc := NewEnrollmentService(students, leads, conversions, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestEnrollmentConvertHappyPath(t *testing.T) {
	students := &mockStudentRepo{count: 4}
	leads := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	conversions := &mockConversionRepo{}
	svc := newEnrollmentFixture(students, leads, conversions)

	student, err := svc.Convert(context.Background(), "lead-1", EnrollmentRequest{AgentName: "Agent K"})
	require.NoError(t, err)

	assert.Equal(t, "CA-MA-UK-26-005", student.ID)
	assert.Equal(t, "2026-09-01", student.EnrollmentDate)
	assert.Equal(t, "Rahim Uddin", student.Name)
	assert.Equal(t, "Agent K", student.AgentName)
	assert.Equal(t, "File opening", student.CurrentStatus)
	require.Len(t, student.Timeline, len(models.ProcessSteps))
	assert.True(t, student.Timeline[0].IsCompleted)
	assert.False(t, student.Timeline[1].IsCompleted)

	// The lead is consumed.
	assert.Empty(t, leads.leads)
	assert.Empty(t, conversions.logs)
}

func TestEnrollmentConvertOverridesLeadFields(t *testing.T) {
	students := &mockStudentRepo{count: 0}
	leads := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	svc := newEnrollmentFixture(students, leads, &mockConversionRepo{})

	student, err := svc.Convert(context.Background(), "lead-1", EnrollmentRequest{
		Email:         "corrected@example.com",
		TargetCountry: "Canada",
		Program:       models.ProgramPhD,
	})
	require.NoError(t, err)

	assert.Equal(t, "corrected@example.com", student.Email)
	assert.Equal(t, "Canada", student.TargetCountry)
	// Overridden program and country feed the generated identifier.
	assert.Equal(t, "CA-PH-CA-26-001", student.ID)
}

func TestEnrollmentConvertRequiresEmail(t *testing.T) {
	lead := fixtureLead()
	lead.Email = ""
	students := &mockStudentRepo{}
	leads := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": lead}}
	svc := newEnrollmentFixture(students, leads, &mockConversionRepo{})

	_, err := svc.Convert(context.Background(), "lead-1", EnrollmentRequest{})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	// No side effects: nothing created, lead untouched.
	assert.Empty(t, students.created)
	assert.Contains(t, leads.leads, "lead-1")
}

func TestEnrollmentConvertUnknownLead(t *testing.T) {
	svc := newEnrollmentFixture(&mockStudentRepo{}, &mockLeadRepo{}, &mockConversionRepo{})

	_, err := svc.Convert(context.Background(), "missing", EnrollmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentConvertPartialFailureLogsCompensation(t *testing.T) {
	students := &mockStudentRepo{count: 4}
	leads := &mockLeadRepo{
		leads:     map[string]*models.Lead{"lead-1": fixtureLead()},
		deleteErr: errors.New("connection reset"),
	}
	conversions := &mockConversionRepo{}
	svc := newEnrollmentFixture(students, leads, conversions)

	student, err := svc.Convert(context.Background(), "lead-1", EnrollmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConversionPartial.Code, appErrors.FromError(err).Code)

	// The student exists and the failed deletion is recorded for retry.
	require.NotNil(t, student)
	require.Len(t, students.created, 1)
	require.Len(t, conversions.logs, 1)
	assert.Equal(t, "lead-1", conversions.logs[0].LeadID)
	assert.Equal(t, student.ID, conversions.logs[0].StudentID)
	assert.Equal(t, models.ConversionPendingLeadDelete, conversions.logs[0].Status)
}

func TestEnrollmentRetryPending(t *testing.T) {
	leads := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	conversions := &mockConversionRepo{logs: []*models.ConversionLog{
		{ID: "c1", LeadID: "lead-1", StudentID: "CA-MA-UK-26-005", Status: models.ConversionPendingLeadDelete},
	}}
	svc := newEnrollmentFixture(&mockStudentRepo{}, leads, conversions)

	resolved, err := svc.RetryPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.Empty(t, leads.leads)
	assert.Equal(t, []string{"c1"}, conversions.resolved)
}

func TestEnrollmentRetryPendingKeepsFailingEntries(t *testing.T) {
	leads := &mockLeadRepo{deleteErr: errors.New("still down")}
	conversions := &mockConversionRepo{logs: []*models.ConversionLog{
		{ID: "c1", LeadID: "lead-1", Status: models.ConversionPendingLeadDelete},
	}}
	svc := newEnrollmentFixture(&mockStudentRepo{}, leads, conversions)

	resolved, err := svc.RetryPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Empty(t, conversions.resolved)
}
