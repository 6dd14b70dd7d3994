package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

type mockSettingsRepo struct {
	rows map[string]*models.Setting
}

func (m *mockSettingsRepo) List(_ context.Context) ([]models.Setting, error) {
	out := make([]models.Setting, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *mockSettingsRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	if row, ok := m.rows[key]; ok {
		return row, nil
	}
	return nil, nil
}

func (m *mockSettingsRepo) Upsert(_ context.Context, setting *models.Setting) error {
	if m.rows == nil {
		m.rows = map[string]*models.Setting{}
	}
	setting.UpdatedAt = time.Now().UTC()
	m.rows[setting.Key] = setting
	return nil
}

func TestSettingsBundleDefaults(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, nil, nil, models.Branding{Name: "Cholo Abroad"})

	bundle, err := svc.Bundle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Cholo Abroad", bundle.Branding.Name)
	assert.Empty(t, bundle.Counselors)
	assert.Empty(t, bundle.Countries)
	assert.NotNil(t, bundle.Sources)
}

func TestSettingsUpdateListReplacesWholesale(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, nil, nil, models.Branding{})

	_, err := svc.UpdateList(context.Background(), models.SettingCountries, UpdateListRequest{
		Values: []string{"UK", "USA", "Canada"},
	})
	require.NoError(t, err)

	values, err := svc.UpdateList(context.Background(), models.SettingCountries, UpdateListRequest{
		Values: []string{"Australia"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Australia"}, values)

	bundle, err := svc.Bundle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Australia"}, bundle.Countries)
}

func TestSettingsListsKeepDuplicatesAndOrder(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, nil, nil, models.Branding{})

	submitted := []string{"Facebook", "Walk-in", "Facebook"}
	values, err := svc.UpdateList(context.Background(), models.SettingSources, UpdateListRequest{Values: submitted})
	require.NoError(t, err)
	assert.Equal(t, submitted, values)
}

func TestSettingsUpdateListRejectsUnknownKey(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, nil, nil, models.Branding{})

	_, err := svc.UpdateList(context.Background(), "branding", UpdateListRequest{Values: []string{"x"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsUpdateBranding(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, nil, nil, models.Branding{Name: "Default"})

	branding, err := svc.UpdateBranding(context.Background(), UpdateBrandingRequest{
		Name:    "Acme Abroad",
		LogoURL: "https://cdn.example.com/logo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Abroad", branding.Name)

	bundle, err := svc.Bundle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Abroad", bundle.Branding.Name)
	assert.Equal(t, "https://cdn.example.com/logo.png", bundle.Branding.LogoURL)
}

func TestSettingsBundleIgnoresCorruptRows(t *testing.T) {
	repo := &mockSettingsRepo{rows: map[string]*models.Setting{
		models.SettingCounselors: {Key: models.SettingCounselors, Value: json.RawMessage(`not json`)},
	}}
	svc := NewSettingsService(repo, nil, nil, models.Branding{})

	bundle, err := svc.Bundle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bundle.Counselors)
}
