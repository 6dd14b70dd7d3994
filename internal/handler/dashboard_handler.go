package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/middleware"
	"github.com/cholo-abroad/crm-api/internal/service"
	"github.com/cholo-abroad/crm-api/pkg/response"
)

// DashboardHandler serves the aggregated landing-page numbers.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Aggregated counts, groupings and the agency-wide balance
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, hit, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// SystemMetrics godoc
// @Summary Runtime metrics snapshot
// @Description Lightweight runtime counters for operational visibility
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}
