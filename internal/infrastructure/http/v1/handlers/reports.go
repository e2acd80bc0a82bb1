package handlers

import (
	"github.com/gin-gonic/gin"

	"shopdesk/internal/domain/reports"
	"shopdesk/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles dashboard report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Dashboard handles GET /reports/dashboard
//
// Query parameters: range (today, yesterday, 1week, 1month, 1year, grand,
// custom), tz (IANA timezone), from/to (local dates for custom ranges).
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.DashboardRequest
	if !h.BindQuery(c, &req) {
		return
	}

	dashboard, err := h.service.Dashboard(ctx, ownerID, req.ToRangeQuery())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dashboard)
}
