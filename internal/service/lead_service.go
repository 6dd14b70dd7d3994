package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type leadRepository interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateLeadRequest holds payload for capturing a new lead.
type CreateLeadRequest struct {
	Name           string                  `json:"name" validate:"required"`
	Phone          string                  `json:"phone" validate:"required"`
	Email          string                  `json:"email" validate:"omitempty,email"`
	TargetCountry  string                  `json:"target_country" validate:"required"`
	Program        models.ProgramType      `json:"program" validate:"required"`
	Course         string                  `json:"course"`
	Source         string                  `json:"source" validate:"required"`
	ReferralPerson string                  `json:"referral_person"`
	LanguageTest   models.LanguageTestInfo `json:"language_test"`
	SSCGpa         string                  `json:"ssc_gpa"`
	HSCGpa         string                  `json:"hsc_gpa"`
	BachelorCgpa   string                  `json:"bachelor_cgpa"`
	MastersGpa     string                  `json:"masters_gpa"`
	CollegeName    string                  `json:"college_name"`
}

// UpdateLeadStatusRequest changes a lead's contact status.
type UpdateLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" validate:"required"`
}

// LeadService handles prospective-applicant use-cases.
type LeadService struct {
	repo      leadRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeadService constructs the lead service.
func NewLeadService(repo leadRepository, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{repo: repo, validator: validate, logger: logger}
}

// List returns leads and pagination metadata.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error) {
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
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
	return leads, pagination, nil
}

// Get returns one lead.
func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	return lead, nil
}

// Create captures a new lead with status New.
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}
	lead := &models.Lead{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		TargetCountry:  req.TargetCountry,
		Program:        req.Program,
		Course:         req.Course,
		Source:         req.Source,
		ReferralPerson: req.ReferralPerson,
		Status:         models.LeadStatusNew,
		LanguageTest:   req.LanguageTest,
		AcademicInfo: models.AcademicInfo{
			SSCGpa:       req.SSCGpa,
			HSCGpa:       req.HSCGpa,
			BachelorCgpa: req.BachelorCgpa,
			MastersGpa:   req.MastersGpa,
			CollegeName:  req.CollegeName,
		},
	}
	if lead.LanguageTest.TestType == "" {
		lead.LanguageTest.TestType = models.LanguageTestNone
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
	}
	return lead, nil
}

// UpdateStatus moves a lead between New and Contacted. Setting the converted
// status directly is rejected: conversion deletes the lead instead of
// updating it, so the terminal status must never be stored.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, req UpdateLeadStatusRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if req.Status == models.LeadStatusConverted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "conversion must go through the enrollment workflow")
	}
	if req.Status != models.LeadStatusNew && req.Status != models.LeadStatusContacted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lead status")
	}

	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead status")
	}
	lead.Status = req.Status
	return lead, nil
}

// Delete removes a lead. Fail-closed: nothing changes when the storage
// delete fails.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lead")
	}
	return nil
}
