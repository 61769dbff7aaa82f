package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/complaint-api/internal/dto"
	"github.com/campusdesk/complaint-api/internal/middleware"
	"github.com/campusdesk/complaint-api/internal/service"
	"github.com/campusdesk/complaint-api/pkg/response"
)

// StatisticsHandler serves the admin statistics endpoints.
type StatisticsHandler struct {
	service *service.StatisticsService
}

// NewStatisticsHandler creates a new handler.
func NewStatisticsHandler(svc *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: svc}
}

// Summary godoc
// @Summary Complaint statistics
// @Description Headline counters, average resolution time and breakdowns
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/statistics [get]
func (h *StatisticsHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, middleware.Meta(c))
}

// LongestOpen godoc
// @Summary Longest-open complaints
// @Description The oldest complaints that are still unresolved
// @Tags Statistics
// @Produce json
// @Param search query string false "Search subject or author"
// @Param status query string false "Status filter"
// @Param role query string false "Submitter role filter"
// @Success 200 {object} response.Envelope
// @Router /admin/statistics/longest-open [get]
func (h *StatisticsHandler) LongestOpen(c *gin.Context) {
	filter := dto.LongestOpenFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Role:   c.Query("role"),
	}

	rows, err := h.service.LongestOpen(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RecentlyClosed godoc
// @Summary Recently solved complaints
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/statistics/recently-closed [get]
func (h *StatisticsHandler) RecentlyClosed(c *gin.Context) {
	rows, err := h.service.RecentlyClosed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// StaffLoad godoc
// @Summary Staff assignment load
// @Description Total assigned-complaint counts per staff member
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/statistics/staff-assignment [get]
func (h *StatisticsHandler) StaffLoad(c *gin.Context) {
	rows, err := h.service.StaffLoad(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export statistics
// @Description Download the statistics summary as CSV or PDF
// @Tags Statistics
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/statistics/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	data, filename, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == service.ExportPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
