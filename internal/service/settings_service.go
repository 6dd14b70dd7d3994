package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type settingsRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// UpdateBrandingRequest replaces the consultancy's display identity.
type UpdateBrandingRequest struct {
	Name    string `json:"name" validate:"required"`
	LogoURL string `json:"logo_url"`
}

// UpdateListRequest replaces one managed list wholesale. The previous value
// is discarded; order is the submitted order and duplicates pass through.
type UpdateListRequest struct {
	Values []string `json:"values" validate:"required"`
}

// SettingsService manages the key/value configuration: branding and the
// managed lists feeding the lead and student forms.
type SettingsService struct {
	settings  settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	defaults  models.Branding
}

// NewSettingsService constructs the settings service. The branding default
// covers a fresh database with no stored branding row.
func NewSettingsService(settings settingsRepository, validate *validator.Validate, logger *zap.Logger, defaults models.Branding) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, validator: validate, logger: logger, defaults: defaults}
}

// Bundle loads every settings row into the aggregate the frontends consume.
// Missing keys resolve to the branding default or an empty list.
func (s *SettingsService) Bundle(ctx context.Context) (*models.SettingsBundle, error) {
	rows, err := s.settings.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	bundle := &models.SettingsBundle{
		Branding:        s.defaults,
		Counselors:      []string{},
		Sources:         []string{},
		Countries:       []string{},
		ReferralPersons: []string{},
	}
	for _, row := range rows {
		switch row.Key {
		case models.SettingBranding:
			if err := json.Unmarshal(row.Value, &bundle.Branding); err != nil {
				s.logger.Warn("corrupt branding setting ignored", zap.Error(err))
			}
		case models.SettingCounselors:
			decodeList(s.logger, row, &bundle.Counselors)
		case models.SettingSources:
			decodeList(s.logger, row, &bundle.Sources)
		case models.SettingCountries:
			decodeList(s.logger, row, &bundle.Countries)
		case models.SettingPersons:
			decodeList(s.logger, row, &bundle.ReferralPersons)
		}
	}
	return bundle, nil
}

// UpdateBranding replaces the stored branding document.
func (s *SettingsService) UpdateBranding(ctx context.Context, req UpdateBrandingRequest) (*models.Branding, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branding payload")
	}

	branding := models.Branding{Name: req.Name, LogoURL: req.LogoURL}
	if err := s.storeValue(ctx, models.SettingBranding, branding); err != nil {
		return nil, err
	}
	return &branding, nil
}

// UpdateList replaces the list stored under key. Only the managed list keys
// are accepted.
func (s *SettingsService) UpdateList(ctx context.Context, key string, req UpdateListRequest) ([]string, error) {
	switch key {
	case models.SettingCounselors, models.SettingSources, models.SettingCountries, models.SettingPersons:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown settings list")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list payload")
	}

	values := req.Values
	if values == nil {
		values = []string{}
	}
	if err := s.storeValue(ctx, key, values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *SettingsService) storeValue(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode setting")
	}
	if err := s.settings.Upsert(ctx, &models.Setting{Key: key, Value: raw}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	s.logger.Info("settings updated", zap.String("key", key))
	return nil
}

func decodeList(logger *zap.Logger, row models.Setting, dest *[]string) {
	if err := json.Unmarshal(row.Value, dest); err != nil {
		logger.Warn("corrupt settings list ignored", zap.String("key", row.Key), zap.Error(err))
	}
}
