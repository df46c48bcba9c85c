package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// GenerateReportRequest represents the request body for generating a report
type GenerateReportRequest struct {
	Type     string `json:"type" binding:"required"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// GenerateReport handles POST /api/v1/reports - builds, archives and returns a CSV report
func (h *Handler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if !bindJSON(c, &req) {
		return
	}

	generated, err := h.svc.Reports.Generate(c.Request.Context(), req.Type, req.DateFrom, req.DateTo)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", generated.Report.FileName))
	c.Header("X-Report-ID", generated.Report.ID)
	c.Data(http.StatusCreated, services.CSVContentType, generated.Content)
}

// ListReports handles GET /api/v1/reports - most recent first
func (h *Handler) ListReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	reports, err := h.svc.Reports.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve reports")
		return
	}
	utils.RespondWithData(c, http.StatusOK, reports)
}

// DownloadReport handles GET /api/v1/reports/:id/download - a short-lived link to the archived file
func (h *Handler) DownloadReport(c *gin.Context) {
	url, err := h.svc.Reports.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to create download link")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"url": url})
}

// DeleteReport handles DELETE /api/v1/reports/:id
func (h *Handler) DeleteReport(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Reports.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete report")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}
