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

type conversionLogRepository interface {
	Create(ctx context.Context, log *models.ConversionLog) error
	ListPending(ctx context.Context) ([]models.ConversionLog, error)
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
}

// EnrollmentRequest carries the operator's review edits applied on top of
// the lead during conversion. Empty fields fall back to the lead's values;
// the effective email must be non-empty.
type EnrollmentRequest struct {
	Name           string                  `json:"name"`
	Phone          string                  `json:"phone"`
	Email          string                  `json:"email" validate:"omitempty,email"`
	TargetCountry  string                  `json:"target_country"`
	Program        models.ProgramType      `json:"program" validate:"omitempty,oneof=Bachelor Masters PhD"`
	AgentName      string                  `json:"agent_name"`
	Source         string                  `json:"source"`
	ReferralPerson string                  `json:"referral_person"`
	Address        models.Address          `json:"address"`
	LanguageTest   models.LanguageTestInfo `json:"language_test"`
	SSCGpa         string                  `json:"ssc_gpa"`
	HSCGpa         string                  `json:"hsc_gpa"`
	BachelorCgpa   string                  `json:"bachelor_cgpa"`
	MastersGpa     string                  `json:"masters_gpa"`
	CollegeName    string                  `json:"college_name"`
}

// EnrollmentService converts leads into enrolled students. Conversion is
// consuming: the student is inserted and the source lead deleted. The two
// writes are independent storage calls, so a failed lead deletion is
// recorded in the compensation log and reported as a distinct partial
// failure instead of being swallowed.
type EnrollmentService struct {
	students    studentRepository
	leads       leadRepository
	conversions conversionLogRepository
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(students studentRepository, leads leadRepository, conversions conversionLogRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:    students,
		leads:       leads,
		conversions: conversions,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Convert merges the lead with the operator's edits and enrolls the result
// as a new student. Preconditions: the effective email must be non-empty.
// Postconditions: exactly one student exists with only the first pipeline
// stage completed, and the source lead is gone.
func (s *EnrollmentService) Convert(ctx context.Context, leadID string, req EnrollmentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request")
	}

	lead, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}

	merged := mergeEnrollment(lead, req)
	if merged.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is mandatory for student portfolio creation")
	}

	count, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	now := s.now()
	merged.ID = models.GenerateStudentID(merged.Program, merged.TargetCountry, count, now)
	merged.EnrollmentDate = now.Format(models.DateLayout)
	merged.Timeline = models.NewTimeline(now)
	merged.CurrentStatus = merged.Timeline.CurrentStatus()

	if err := s.students.Create(ctx, merged); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if err := s.leads.Delete(ctx, leadID); err != nil {
		s.logger.Error("lead deletion failed after student insert",
			zap.String("lead_id", leadID), zap.String("student_id", merged.ID), zap.Error(err))
		if logErr := s.conversions.Create(ctx, &models.ConversionLog{
			LeadID:    leadID,
			StudentID: merged.ID,
			Status:    models.ConversionPendingLeadDelete,
		}); logErr != nil {
			s.logger.Error("failed to record conversion compensation entry", zap.Error(logErr))
		}
		return merged, appErrors.Wrap(err, appErrors.ErrConversionPartial.Code, appErrors.ErrConversionPartial.Status, appErrors.ErrConversionPartial.Message)
	}

	return merged, nil
}

// RetryPending re-attempts the lead deletions recorded in the compensation
// log and returns how many entries were resolved.
func (s *EnrollmentService) RetryPending(ctx context.Context) (int, error) {
	pending, err := s.conversions.ListPending(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending conversions")
	}

	resolved := 0
	for _, entry := range pending {
		if err := s.leads.Delete(ctx, entry.LeadID); err != nil {
			s.logger.Warn("pending lead deletion failed again",
				zap.String("lead_id", entry.LeadID), zap.Error(err))
			continue
		}
		if err := s.conversions.MarkResolved(ctx, entry.ID, s.now()); err != nil {
			s.logger.Warn("failed to mark conversion resolved", zap.String("id", entry.ID), zap.Error(err))
			continue
		}
		resolved++
	}
	return resolved, nil
}

// mergeEnrollment overlays operator edits on the lead's captured data.
// The operator can change any field, including program and country, which
// feed the generated identifier.
func mergeEnrollment(lead *models.Lead, req EnrollmentRequest) *models.Student {
	student := &models.Student{
		Name:           lead.Name,
		Phone:          lead.Phone,
		Email:          lead.Email,
		TargetCountry:  lead.TargetCountry,
		Program:        lead.Program,
		Source:         lead.Source,
		ReferralPerson: lead.ReferralPerson,
		LanguageTest:   lead.LanguageTest,
		AcademicInfo:   lead.AcademicInfo,
	}

	if req.Name != "" {
		student.Name = req.Name
	}
	if req.Phone != "" {
		student.Phone = req.Phone
	}
	if req.Email != "" {
		student.Email = req.Email
	}
	if req.TargetCountry != "" {
		student.TargetCountry = req.TargetCountry
	}
	if req.Program != "" {
		student.Program = req.Program
	}
	if req.Source != "" {
		student.Source = req.Source
	}
	if req.ReferralPerson != "" {
		student.ReferralPerson = req.ReferralPerson
	}
	if req.AgentName != "" {
		student.AgentName = req.AgentName
	}
	student.Address = req.Address
	if req.LanguageTest.TestType != "" {
		student.LanguageTest = req.LanguageTest
	}
	if student.LanguageTest.TestType == "" {
		student.LanguageTest.TestType = models.LanguageTestNone
	}
	if req.SSCGpa != "" {
		student.SSCGpa = req.SSCGpa
	}
	if req.HSCGpa != "" {
		student.HSCGpa = req.HSCGpa
	}
	if req.BachelorCgpa != "" {
		student.BachelorCgpa = req.BachelorCgpa
	}
	if req.MastersGpa != "" {
		student.MastersGpa = req.MastersGpa
	}
	if req.CollegeName != "" {
		student.CollegeName = req.CollegeName
	}

	return student
}
