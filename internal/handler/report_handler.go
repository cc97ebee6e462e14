package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// ReportHandler serves the dashboard aggregates and CSV exports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSummary handles GET /api/v1/reports/summary?from&to
func (h *ReportHandler) GetSummary(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	r, err := parseDateRangeQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}

	summary, err := h.reportService.GetSummary(c.Request().Context(), clientID, r)
	if err != nil {
		return respondError(c, err, "Failed to build summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// GetGoalProgress handles GET /api/v1/reports/goals?year&month&from&to.
// Without from/to, spending is counted over the goals' month.
func (h *ReportHandler) GetGoalProgress(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	year, month, fieldErrors := parseYearMonthQuery(c)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid period", fieldErrors)
	}
	r, err := parseDateRangeQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}

	progress, err := h.reportService.GetGoalProgress(c.Request().Context(), clientID, year, month, r)
	if err != nil {
		return respondError(c, err, "Failed to build goal progress")
	}
	return c.JSON(http.StatusOK, progress)
}

// DownloadCSV handles GET /api/v1/reports/transactions.csv?from&to
func (h *ReportHandler) DownloadCSV(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	r, err := parseDateRangeQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(c.Request().Context(), clientID, r, &buf); err != nil {
		return respondError(c, err, "Failed to export transactions")
	}

	filename := fmt.Sprintf("transacoes_%s.csv", util.Today().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// PublishExport handles POST /api/v1/reports/exports?from&to. The file is
// stored in object storage and a presigned download URL is returned.
func (h *ReportHandler) PublishExport(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	r, err := parseDateRangeQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}

	result, err := h.reportService.PublishExport(c.Request().Context(), clientID, r)
	if err != nil {
		return respondError(c, err, "Failed to publish export")
	}

	return c.JSON(http.StatusCreated, result)
}
