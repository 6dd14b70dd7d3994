package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/service"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
	"github.com/cholo-abroad/crm-api/pkg/response"
)

// SettingsHandler wires HTTP endpoints to the settings service.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Get godoc
// @Summary Get settings
// @Description Load branding and every managed list
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	bundle, err := h.service.Bundle(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bundle, nil)
}

// UpdateBranding godoc
// @Summary Update branding
// @Description Replace the agency name and logo
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateBrandingRequest true "Branding payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/branding [put]
func (h *SettingsHandler) UpdateBranding(c *gin.Context) {
	var req service.UpdateBrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid branding payload"))
		return
	}

	branding, err := h.service.UpdateBranding(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, branding, nil)
}

// UpdateList godoc
// @Summary Replace a managed list
// @Description Replace one of the managed lists wholesale
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "List key" Enums(counselors, sources, countries, persons)
// @Param payload body service.UpdateListRequest true "List payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/lists/{key} [put]
func (h *SettingsHandler) UpdateList(c *gin.Context) {
	var req service.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid list payload"))
		return
	}

	values, err := h.service.UpdateList(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, values, nil)
}
