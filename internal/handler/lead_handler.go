package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/internal/service"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
	"github.com/cholo-abroad/crm-api/pkg/response"
)

// LeadHandler wires HTTP endpoints to the lead service.
type LeadHandler struct {
	service   *service.LeadService
	dashboard *service.DashboardService
}

// NewLeadHandler creates a new handler.
func NewLeadHandler(svc *service.LeadService, dashboard *service.DashboardService) *LeadHandler {
	return &LeadHandler{service: svc, dashboard: dashboard}
}

// List godoc
// @Summary List leads
// @Description List leads with filtering and pagination
// @Tags Leads
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param status query string false "Contact status"
// @Param source query string false "Source"
// @Param search query string false "Name or phone search"
// @Success 200 {object} response.Envelope
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter := models.LeadFilter{
		Search:    c.Query("search"),
		Status:    models.LeadStatus(c.Query("status")),
		Source:    c.Query("source"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	leads, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// Get godoc
// @Summary Get lead
// @Description Fetch one lead by id
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// Create godoc
// @Summary Capture lead
// @Description Record a new prospective applicant
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body service.CreateLeadRequest true "Lead payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lead payload"))
		return
	}

	lead, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, lead)
}

// UpdateStatus godoc
// @Summary Update lead status
// @Description Change a lead's contact status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body service.UpdateLeadStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	lead, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, lead, nil)
}

// Delete godoc
// @Summary Delete lead
// @Description Remove a lead permanently
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}
