package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, student *models.Student) error
	Upsert(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type applicationRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.UniversityApplication, error)
	FindByID(ctx context.Context, id string) (*models.UniversityApplication, error)
	Create(ctx context.Context, application *models.UniversityApplication) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type transactionRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Transaction, error)
	Create(ctx context.Context, tx *models.Transaction) error
}

type noteRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

// UpdateStudentRequest replaces the editable profile fields of a case file.
type UpdateStudentRequest struct {
	Name           string                  `json:"name" validate:"required"`
	Phone          string                  `json:"phone" validate:"required"`
	Email          string                  `json:"email" validate:"required,email"`
	TargetCountry  string                  `json:"target_country" validate:"required"`
	Program        models.ProgramType      `json:"program" validate:"required"`
	AgentName      string                  `json:"agent_name"`
	ReferralPerson string                  `json:"referral_person"`
	Address        models.Address          `json:"address"`
	LanguageTest   models.LanguageTestInfo `json:"language_test"`
	SSCGpa         string                  `json:"ssc_gpa"`
	HSCGpa         string                  `json:"hsc_gpa"`
	BachelorCgpa   string                  `json:"bachelor_cgpa"`
	MastersGpa     string                  `json:"masters_gpa"`
	CollegeName    string                  `json:"college_name"`
}

// ToggleStageRequest names the pipeline stage to flip.
type ToggleStageRequest struct {
	Step string `json:"step" validate:"required"`
}

// AddTransactionRequest appends a ledger entry.
type AddTransactionRequest struct {
	Description string                 `json:"description" validate:"required"`
	Amount      float64                `json:"amount" validate:"required,gt=0"`
	Type        models.TransactionType `json:"type" validate:"required"`
}

// AddApplicationRequest records a new university application.
type AddApplicationRequest struct {
	UniversityName string `json:"university_name" validate:"required"`
	Course         string `json:"course" validate:"required"`
}

// UpdateApplicationStatusRequest sets an application outcome.
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// AddNoteRequest appends a case-file note.
type AddNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

// StudentService handles case-file use-cases: profile, pipeline, ledger,
// applications and notes.
type StudentService struct {
	repo         studentRepository
	applications applicationRepository
	transactions transactionRepository
	notes        noteRepository
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, applications applicationRepository, transactions transactionRepository, notes noteRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:         repo,
		applications: applications,
		transactions: transactions,
		notes:        notes,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get assembles the full case file: student row, owned collections and the
// derived ledger balance.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.findStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	applications, err := s.applications.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	transactions, err := s.transactions.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transactions")
	}
	notes, err := s.notes.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notes")
	}

	return &models.StudentDetail{
		Student:      *student,
		Applications: applications,
		Transactions: transactions,
		Notes:        notes,
		Balance:      models.Balance(transactions),
	}, nil
}

// Update replaces the editable profile fields with a full-record upsert.
// The pipeline timeline and derived status are untouched.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.findStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	student.Name = req.Name
	student.Phone = req.Phone
	student.Email = req.Email
	student.TargetCountry = req.TargetCountry
	student.Program = req.Program
	student.AgentName = req.AgentName
	student.ReferralPerson = req.ReferralPerson
	student.Address = req.Address
	student.LanguageTest = req.LanguageTest
	student.SSCGpa = req.SSCGpa
	student.HSCGpa = req.HSCGpa
	student.BachelorCgpa = req.BachelorCgpa
	student.MastersGpa = req.MastersGpa
	student.CollegeName = req.CollegeName

	if err := s.repo.Upsert(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// ToggleStage flips the named pipeline stage and recomputes the derived
// status. The original timeline value is never mutated in place. An unknown
// step name leaves the timeline unchanged.
func (s *StudentService) ToggleStage(ctx context.Context, id string, req ToggleStageRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}
	student, err := s.findStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *student
	updated.Timeline = student.Timeline.Toggle(req.Step, s.now())
	updated.CurrentStatus = updated.Timeline.CurrentStatus()

	if err := s.repo.Upsert(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timeline")
	}
	return &updated, nil
}

// Delete removes a student and its owned collections. Fail-closed on
// storage errors.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.findStudent(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// AddTransaction appends an immutable ledger entry dated today.
func (s *StudentService) AddTransaction(ctx context.Context, studentID string, req AddTransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transaction payload")
	}
	switch req.Type {
	case models.TransactionReceived, models.TransactionPayment, models.TransactionRefund:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown transaction type")
	}
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		StudentID:   studentID,
		Date:        s.now().Format(models.DateLayout),
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record transaction")
	}
	return tx, nil
}

// Balance recomputes the student's ledger balance on demand.
func (s *StudentService) Balance(ctx context.Context, studentID string) (float64, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return 0, err
	}
	transactions, err := s.transactions.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transactions")
	}
	return models.Balance(transactions), nil
}

// AddApplication records a university application with Pending status.
func (s *StudentService) AddApplication(ctx context.Context, studentID string, req AddApplicationRequest) (*models.UniversityApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}

	application := &models.UniversityApplication{
		StudentID:      studentID,
		UniversityName: req.UniversityName,
		Course:         req.Course,
		Status:         models.ApplicationPending,
	}
	if err := s.applications.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record application")
	}
	return application, nil
}

// UpdateApplicationStatus sets an application outcome. Statuses are freely
// settable; there are no transition restrictions.
func (s *StudentService) UpdateApplicationStatus(ctx context.Context, studentID, applicationID string, req UpdateApplicationStatusRequest) (*models.UniversityApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.ValidApplicationStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}

	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if application.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}

	if err := s.applications.UpdateStatus(ctx, applicationID, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	application.Status = req.Status
	return application, nil
}

// AddNote appends a note stamped with the current date.
func (s *StudentService) AddNote(ctx context.Context, studentID string, req AddNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}

	note := &models.Note{
		StudentID: studentID,
		Text:      req.Text,
		CreatedAt: s.now().Format(models.DateLayout),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record note")
	}
	return note, nil
}

// DeleteNote removes one note from the case file.
func (s *StudentService) DeleteNote(ctx context.Context, studentID, noteID string) error {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}

func (s *StudentService) findStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
