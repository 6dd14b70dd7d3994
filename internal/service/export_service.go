package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/pkg/export"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
	"github.com/cholo-abroad/crm-api/pkg/jobs"
	"github.com/cholo-abroad/crm-api/pkg/storage"
)

// ShareLink is a time-limited download reference to an archived export.
type ShareLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type archivePayload struct {
	Filename string
	Data     []byte
}

// ExportService renders student data to downloadable documents. Branding
// comes from settings so the PDF header matches the configured agency name.
// Every rendered document is also archived on disk through a background
// queue; archived case files can be shared through signed links.
type ExportService struct {
	students *StudentService
	settings *SettingsService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	store    *storage.ArchiveStore
	signer   *storage.ShareSigner
	archiver *jobs.Queue
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(students *StudentService, settings *SettingsService, store *storage.ArchiveStore, signer *storage.ShareSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		students: students,
		settings: settings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		store:    store,
		signer:   signer,
		logger:   logger,
	}
	s.archiver = jobs.NewQueue("export-archive", s.archiveJob, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return s
}

// Start launches the archive workers.
func (s *ExportService) Start(ctx context.Context) {
	s.archiver.Start(ctx)
}

// Stop drains the archive workers.
func (s *ExportService) Stop() {
	s.archiver.Stop()
}

func (s *ExportService) archiveJob(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload %T", job.Payload)
	}
	if _, err := s.store.Save(payload.Filename, payload.Data); err != nil {
		return err
	}
	return nil
}

func (s *ExportService) archive(filename string, data []byte) {
	if s.store == nil {
		return
	}
	err := s.archiver.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "archive",
		Payload: archivePayload{Filename: filename, Data: data},
	})
	if err != nil {
		s.logger.Warn("failed to queue export archive", zap.String("file", filename), zap.Error(err))
	}
}

var studentCSVHeaders = []string{
	"ID", "Name", "Phone", "Email", "Country", "Program",
	"Status", "Agent", "Source", "Enrollment Date",
}

// StudentsCSV exports the filtered student list as a CSV document.
func (s *ExportService) StudentsCSV(ctx context.Context, filter models.StudentFilter) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = 100
	var rows []map[string]string
	for {
		students, page, err := s.students.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			rows = append(rows, map[string]string{
				"ID":              st.ID,
				"Name":            st.Name,
				"Phone":           st.Phone,
				"Email":           st.Email,
				"Country":         st.TargetCountry,
				"Program":         string(st.Program),
				"Status":          st.CurrentStatus,
				"Agent":           st.AgentName,
				"Source":          st.Source,
				"Enrollment Date": st.EnrollmentDate,
			})
		}
		if len(students) == 0 || len(rows) >= page.TotalCount {
			break
		}
		filter.Page++
	}

	data, err := s.csv.Render(export.Dataset{Headers: studentCSVHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	s.archive(fmt.Sprintf("csv/students-%s.csv", time.Now().UTC().Format("20060102-150405")), data)
	return data, nil
}

// CaseFilePDF exports one student's full case file: profile, pipeline,
// applications and ledger.
func (s *ExportService) CaseFilePDF(ctx context.Context, studentID string) ([]byte, string, error) {
	detail, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	title := detail.Name
	if s.settings != nil {
		if bundle, err := s.settings.Bundle(ctx); err == nil && bundle.Branding.Name != "" {
			title = fmt.Sprintf("%s - %s", bundle.Branding.Name, detail.Name)
		}
	}

	sections := []export.Section{
		profileSection(detail),
		pipelineSection(detail.Timeline),
		applicationsSection(detail.Applications),
		ledgerSection(detail.Transactions, detail.Balance),
	}

	data, err := s.pdf.Render(title, sections)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	filename := fmt.Sprintf("%s-case-file.pdf", detail.ID)
	s.archive(path.Join("pdf", filename), data)
	return data, filename, nil
}

// ShareCaseFile archives the student's case file and returns a signed
// time-limited download token. The file is written synchronously so the
// link works immediately.
func (s *ExportService) ShareCaseFile(ctx context.Context, studentID string) (*ShareLink, error) {
	if s.store == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export sharing is not configured")
	}

	data, filename, err := s.CaseFilePDF(ctx, studentID)
	if err != nil {
		return nil, err
	}

	relPath := path.Join("shared", filename)
	if _, err := s.store.Save(relPath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store shared export")
	}

	token, expiresAt, err := s.signer.Sign(studentID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign share link")
	}
	return &ShareLink{Token: token, ExpiresAt: expiresAt}, nil
}

// Download resolves a share token to the archived file's bytes.
func (s *ExportService) Download(token string) ([]byte, string, error) {
	if s.store == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "export sharing is not configured")
	}

	_, relPath, _, err := s.signer.Verify(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired share link")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "shared export no longer available")
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read shared export")
	}
	return data, path.Base(relPath), nil
}

// CleanupArchives removes archived exports older than retain.
func (s *ExportService) CleanupArchives(retain time.Duration) {
	if s.store == nil {
		return
	}
	deleted, err := s.store.CleanupOlderThan(retain)
	if err != nil {
		s.logger.Warn("archive cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("archived exports removed", zap.Int("count", len(deleted)))
	}
}

func profileSection(detail *models.StudentDetail) export.Section {
	return export.Section{
		Heading: "Profile",
		Dataset: export.Dataset{
			Headers: []string{"Field", "Value"},
			Rows: []map[string]string{
				{"Field": "Student ID", "Value": detail.ID},
				{"Field": "Phone", "Value": detail.Phone},
				{"Field": "Email", "Value": detail.Email},
				{"Field": "Country", "Value": detail.TargetCountry},
				{"Field": "Program", "Value": string(detail.Program)},
				{"Field": "Current Status", "Value": detail.CurrentStatus},
				{"Field": "Agent", "Value": detail.AgentName},
				{"Field": "Enrolled", "Value": detail.EnrollmentDate},
			},
		},
	}
}

func pipelineSection(timeline models.Timeline) export.Section {
	rows := make([]map[string]string, 0, len(timeline))
	for _, entry := range timeline {
		done := "No"
		if entry.IsCompleted {
			done = "Yes"
		}
		rows = append(rows, map[string]string{
			"Stage":     entry.Step,
			"Completed": done,
			"Date":      entry.DateCompleted,
		})
	}
	return export.Section{
		Heading: "Pipeline",
		Dataset: export.Dataset{Headers: []string{"Stage", "Completed", "Date"}, Rows: rows},
	}
}

func applicationsSection(applications []models.UniversityApplication) export.Section {
	rows := make([]map[string]string, 0, len(applications))
	for _, app := range applications {
		rows = append(rows, map[string]string{
			"University": app.UniversityName,
			"Course":     app.Course,
			"Status":     string(app.Status),
		})
	}
	return export.Section{
		Heading: "Applications",
		Dataset: export.Dataset{Headers: []string{"University", "Course", "Status"}, Rows: rows},
	}
}

func ledgerSection(transactions []models.Transaction, balance float64) export.Section {
	rows := make([]map[string]string, 0, len(transactions)+1)
	for _, tx := range transactions {
		rows = append(rows, map[string]string{
			"Date":        tx.Date,
			"Description": tx.Description,
			"Type":        string(tx.Type),
			"Amount":      strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		})
	}
	rows = append(rows, map[string]string{
		"Description": "Balance",
		"Amount":      strconv.FormatFloat(balance, 'f', 2, 64),
	})
	return export.Section{
		Heading: "Ledger",
		Dataset: export.Dataset{Headers: []string{"Date", "Description", "Type", "Amount"}, Rows: rows},
	}
}
