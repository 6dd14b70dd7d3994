package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/service"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
	"github.com/cholo-abroad/crm-api/pkg/response"
)

// EnrollmentHandler exposes the lead to student conversion workflow.
type EnrollmentHandler struct {
	service   *service.EnrollmentService
	dashboard *service.DashboardService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, dashboard *service.DashboardService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, dashboard: dashboard}
}

// Convert godoc
// @Summary Convert lead to student
// @Description Enroll a lead as a student, consuming the lead
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body service.EnrollmentRequest true "Review edits"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /leads/{id}/convert [post]
func (h *EnrollmentHandler) Convert(c *gin.Context) {
	var req service.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	student, err := h.service.Convert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		// A partial failure still created the student; the caller gets
		// both the error and the created record for follow-up.
		if appErr, ok := err.(*appErrors.Error); ok && appErr.Code == appErrors.ErrConversionPartial.Code {
			h.dashboard.Invalidate(c.Request.Context())
			response.JSON(c, appErr.Status, gin.H{"student": student, "error": appErr.Message}, nil)
			return
		}
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, student)
}

// RetryPending godoc
// @Summary Retry pending conversions
// @Description Re-attempt lead deletions left over from partial conversions
// @Tags Enrollment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conversions/retry [post]
func (h *EnrollmentHandler) RetryPending(c *gin.Context) {
	resolved, err := h.service.RetryPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"resolved": resolved}, nil)
}
