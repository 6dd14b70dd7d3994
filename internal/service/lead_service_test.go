package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cholo-abroad/crm-api/internal/models"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
)

func TestLeadCreateDefaults(t *testing.T) {
	repo := &mockLeadRepo{}
	svc := NewLeadService(repo, nil, nil)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{
		Name:          "Sadia Islam",
		Phone:         "01733333333",
		TargetCountry: "Australia",
		Program:       models.ProgramBachelor,
		Source:        "Walk-in",
	})
	require.NoError(t, err)

	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, models.LanguageTestNone, lead.LanguageTest.TestType)
}

func TestLeadCreateWithoutEmailIsAllowed(t *testing.T) {
	repo := &mockLeadRepo{}
	svc := NewLeadService(repo, nil, nil)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{
		Name:          "No Email",
		Phone:         "01744444444",
		TargetCountry: "UK",
		Program:       models.ProgramMasters,
		Source:        "Facebook",
	})
	require.NoError(t, err)
	assert.Empty(t, lead.Email)
}

func TestLeadCreateValidatesRequiredFields(t *testing.T) {
	svc := NewLeadService(&mockLeadRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateLeadRequest{Name: "Only Name"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeadUpdateStatusRejectsConvertedDirectly(t *testing.T) {
	repo := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	svc := NewLeadService(repo, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "lead-1", UpdateLeadStatusRequest{
		Status: models.LeadStatusConverted,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// The stored lead did not change.
	assert.Equal(t, models.LeadStatusContacted, repo.leads["lead-1"].Status)
}

func TestLeadUpdateStatusMovesBetweenContactStates(t *testing.T) {
	repo := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	svc := NewLeadService(repo, nil, nil)

	lead, err := svc.UpdateStatus(context.Background(), "lead-1", UpdateLeadStatusRequest{
		Status: models.LeadStatusNew,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
}

func TestLeadUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := &mockLeadRepo{leads: map[string]*models.Lead{"lead-1": fixtureLead()}}
	svc := NewLeadService(repo, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "lead-1", UpdateLeadStatusRequest{
		Status: models.LeadStatus("Lost"),
	})
	require.Error(t, err)
}

func TestLeadDeleteUnknownLead(t *testing.T) {
	svc := NewLeadService(&mockLeadRepo{}, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
