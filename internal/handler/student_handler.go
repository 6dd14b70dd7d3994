package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/internal/service"
	appErrors "github.com/cholo-abroad/crm-api/pkg/errors"
	"github.com/cholo-abroad/crm-api/pkg/response"
)

// StudentHandler wires HTTP endpoints to the student case-file service.
type StudentHandler struct {
	service   *service.StudentService
	exports   *service.ExportService
	dashboard *service.DashboardService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService, exports *service.ExportService, dashboard *service.DashboardService) *StudentHandler {
	return &StudentHandler{service: svc, exports: exports, dashboard: dashboard}
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	filter := models.StudentFilter{
		Search:    c.Query("search"),
		Country:   c.Query("country"),
		AgentName: c.Query("agent"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return filter
}

// List godoc
// @Summary List students
// @Description List enrolled students with filtering and pagination
// @Tags Students
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param country query string false "Target country"
// @Param agent query string false "Agent name"
// @Param status query string false "Pipeline status"
// @Param search query string false "Name, phone or id search"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.service.List(c.Request.Context(), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student case file
// @Description Fetch a student with applications, ledger, notes and balance
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update student profile
// @Description Replace the editable profile fields
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, student, nil)
}

// ToggleStage godoc
// @Summary Toggle pipeline stage
// @Description Flip one pipeline stage and rederive the current status
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ToggleStageRequest true "Stage payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/timeline/toggle [patch]
func (h *StudentHandler) ToggleStage(c *gin.Context) {
	var req service.ToggleStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stage payload"))
		return
	}

	student, err := h.service.ToggleStage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Description Remove a student and every owned record
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// AddTransaction godoc
// @Summary Add ledger entry
// @Description Append an immutable transaction to the student's ledger
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.AddTransactionRequest true "Transaction payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/transactions [post]
func (h *StudentHandler) AddTransaction(c *gin.Context) {
	var req service.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transaction payload"))
		return
	}

	tx, err := h.service.AddTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, tx)
}

// Balance godoc
// @Summary Get ledger balance
// @Description Current balance derived from the full transaction history
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/balance [get]
func (h *StudentHandler) Balance(c *gin.Context) {
	balance, err := h.service.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"balance": balance}, nil)
}

// AddApplication godoc
// @Summary Add university application
// @Description Record a new university submission for the student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.AddApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/applications [post]
func (h *StudentHandler) AddApplication(c *gin.Context) {
	var req service.AddApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.service.AddApplication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// UpdateApplicationStatus godoc
// @Summary Update application status
// @Description Set a university application's outcome
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param appId path string true "Application ID"
// @Param payload body service.UpdateApplicationStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/applications/{appId}/status [patch]
func (h *StudentHandler) UpdateApplicationStatus(c *gin.Context) {
	var req service.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	app, err := h.service.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), c.Param("appId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// AddNote godoc
// @Summary Add note
// @Description Attach a free-text note to the student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.AddNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/notes [post]
func (h *StudentHandler) AddNote(c *gin.Context) {
	var req service.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// DeleteNote godoc
// @Summary Delete note
// @Description Remove a note from the student
// @Tags Students
// @Param id path string true "Student ID"
// @Param noteId path string true "Note ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/notes/{noteId} [delete]
func (h *StudentHandler) DeleteNote(c *gin.Context) {
	if err := h.service.DeleteNote(c.Request.Context(), c.Param("id"), c.Param("noteId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export students CSV
// @Description Download the filtered student list as CSV
// @Tags Students
// @Produce text/csv
// @Success 200 {string} string "CSV document"
// @Router /students/export/csv [get]
func (h *StudentHandler) ExportCSV(c *gin.Context) {
	data, err := h.exports.StudentsCSV(c.Request.Context(), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ShareCaseFile godoc
// @Summary Share case file
// @Description Create a time-limited download link for the case file PDF
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/export/share [post]
func (h *StudentHandler) ShareCaseFile(c *gin.Context) {
	link, err := h.exports.ShareCaseFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// DownloadShared godoc
// @Summary Download shared export
// @Description Resolve a share token to the archived document
// @Tags Students
// @Produce application/pdf
// @Param token path string true "Share token"
// @Success 200 {string} string "Document"
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *StudentHandler) DownloadShared(c *gin.Context) {
	data, filename, err := h.exports.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportPDF godoc
// @Summary Export case file PDF
// @Description Download one student's case file as a PDF document
// @Tags Students
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {string} string "PDF document"
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/export/pdf [get]
func (h *StudentHandler) ExportPDF(c *gin.Context) {
	data, filename, err := h.exports.CaseFilePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
